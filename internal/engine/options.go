// Package engine binds the native CoinRun simulator through its C ABI and
// exposes it as a vectorized batch environment. The simulator itself is a
// black box: levels, physics and rendering all happen inside the shared
// library, this package only moves buffers across the boundary.
package engine

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// MonitorPolicy selects which environments write monitor.csv logs.
type MonitorPolicy int

const (
	MonitorOff MonitorPolicy = iota
	MonitorFirstEnv
	MonitorAll
)

// InitOptions is the one-time global configuration of the native library.
type InitOptions struct {
	Threads int

	// Level generation
	NumLevels    int
	SetSeed      int
	RandSeed     int
	LevelTimeout int

	PaintVelInfo        bool
	UseDataAugmentation bool

	// Reward shaping
	AirControl         float32
	BumpHeadPenalty    float32
	DiePenalty         float32
	KillMonsterReward  float32
	JumpPenalty        float32
	SquatPenalty       float32
	JitterSquatPenalty float32

	MonitorDir    string
	MonitorPolicy MonitorPolicy
}

// DefaultInitOptions returns the engine configuration used for data
// collection: unlimited level set, a fresh random seed and full monitor
// logging.
func DefaultInitOptions(monitorDir string) InitOptions {
	return InitOptions{
		Threads:       4,
		NumLevels:     0,
		SetSeed:       -1,
		RandSeed:      randomSeed(),
		LevelTimeout:  1000,
		MonitorDir:    monitorDir,
		MonitorPolicy: MonitorAll,
	}
}

func (o InitOptions) validate() error {
	if o.Threads <= 0 {
		return fmt.Errorf("engine: threads must be positive, got %d", o.Threads)
	}
	if o.MonitorPolicy < MonitorOff || o.MonitorPolicy > MonitorAll {
		return fmt.Errorf("engine: invalid monitor policy %d", o.MonitorPolicy)
	}
	if o.MonitorPolicy != MonitorOff && o.MonitorDir == "" {
		return fmt.Errorf("engine: monitor policy requires a monitor directory")
	}
	return nil
}

// randomSeed draws a non-negative seed from the system entropy source.
func randomSeed() int {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return int(binary.LittleEndian.Uint64(b[:]) % 1000000000)
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
