package engine

/*
#cgo CXXFLAGS: -std=c++11
#cgo LDFLAGS: -lcoinrun_cpp

#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

extern void init(int threads);
extern int  get_NUM_ACTIONS(void);
extern int  get_RES_W(void);
extern int  get_RES_H(void);
extern int  get_VIDEORES(void);
extern int  get_AUDIO_MAP_SIZE(void);
extern void initialize_args(int32_t *int_args, float *float_args);
extern void initialize_set_monitor_dir(const char *dir, int policy);
extern int  vec_create(int nenvs, int lump_n, bool collect_data, float default_zoom);
extern void vec_close(int handle);
extern void vec_step_async_discrete(int handle, int32_t *actions);
extern void vec_wait(int handle,
                     uint8_t *rgb, uint8_t *render_rgb, uint8_t *audio_seg_map,
                     float *rew, bool *done, bool *new_level);
extern void coinrun_shutdown(void);
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

var (
	initOnce sync.Once
	inited   bool
)

// Constants holds the dimensions the native library was compiled with.
type Constants struct {
	NumActions   int
	ResW         int
	ResH         int
	VideoRes     int
	AudioMapSize int
}

// LibConstants reads the compile-time constants out of the library.
func LibConstants() Constants {
	return Constants{
		NumActions:   int(C.get_NUM_ACTIONS()),
		ResW:         int(C.get_RES_W()),
		ResH:         int(C.get_RES_H()),
		VideoRes:     int(C.get_VIDEORES()),
		AudioMapSize: int(C.get_AUDIO_MAP_SIZE()),
	}
}

// Init performs the one-time global initialization of the library. The
// worker pool is started at most once per process; argument and monitor
// configuration is applied on every call.
func Init(opts InitOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	intArgs := []int32{
		int32(opts.NumLevels),
		boolToInt(opts.PaintVelInfo),
		boolToInt(opts.UseDataAugmentation),
		int32(opts.SetSeed),
		int32(opts.RandSeed),
		int32(opts.LevelTimeout),
	}
	floatArgs := []float32{
		opts.AirControl,
		opts.BumpHeadPenalty,
		opts.DiePenalty,
		opts.KillMonsterReward,
		opts.JumpPenalty,
		opts.SquatPenalty,
		opts.JitterSquatPenalty,
	}
	C.initialize_args(
		(*C.int32_t)(unsafe.Pointer(&intArgs[0])),
		(*C.float)(unsafe.Pointer(&floatArgs[0])),
	)

	if opts.MonitorDir != "" {
		dir := C.CString(opts.MonitorDir)
		defer C.free(unsafe.Pointer(dir))
		C.initialize_set_monitor_dir(dir, C.int(opts.MonitorPolicy))
	}

	initOnce.Do(func() {
		C.init(C.int(opts.Threads))
		inited = true
	})
	return nil
}

// Shutdown stops the library's worker pool. Safe to call when Init never
// ran.
func Shutdown() {
	if !inited {
		return
	}
	C.coinrun_shutdown()
	inited = false
}

// VecEnv is a batch of environments stepped in lockstep inside the native
// library. Not safe for concurrent use.
type VecEnv struct {
	handle C.int
	closed bool

	NumEnvs     int
	Consts      Constants
	collectData bool

	// observation and result buffers, reused across steps
	rgb         []byte
	renderRGB   []byte
	audioSegMap []byte
	rewards     []float32
	dones       []C.bool
	newLevels   []C.bool
	actions     []int32
}

// NewVecEnv creates a batch of numEnvs environments. With collectData set
// the library renders hi-res frames and audio maps each step and writes
// monitor logs according to the Init policy.
func NewVecEnv(numEnvs, lumpN int, collectData bool, defaultZoom float32) (*VecEnv, error) {
	if numEnvs <= 0 {
		return nil, fmt.Errorf("engine: numEnvs must be positive, got %d", numEnvs)
	}
	if !inited {
		return nil, fmt.Errorf("engine: Init must be called before NewVecEnv")
	}

	consts := LibConstants()
	v := &VecEnv{
		NumEnvs:     numEnvs,
		Consts:      consts,
		collectData: collectData,
		rgb:         make([]byte, numEnvs*consts.ResH*consts.ResW*3),
		rewards:     make([]float32, numEnvs),
		dones:       make([]C.bool, numEnvs),
		newLevels:   make([]C.bool, numEnvs),
		actions:     make([]int32, numEnvs),
	}
	if collectData {
		v.renderRGB = make([]byte, numEnvs*consts.VideoRes*consts.VideoRes*3)
		v.audioSegMap = make([]byte, numEnvs*consts.AudioMapSize)
	} else {
		// the library still expects valid pointers
		v.renderRGB = make([]byte, 1)
		v.audioSegMap = make([]byte, 1)
	}

	v.handle = C.vec_create(
		C.int(numEnvs),
		C.int(lumpN),
		C.bool(collectData),
		C.float(defaultZoom),
	)
	return v, nil
}

// StepAsync submits one discrete action per environment.
func (v *VecEnv) StepAsync(actions []int32) error {
	if v.closed {
		return fmt.Errorf("engine: environment is closed")
	}
	if len(actions) != v.NumEnvs {
		return fmt.Errorf("engine: got %d actions for %d environments", len(actions), v.NumEnvs)
	}
	copy(v.actions, actions)
	C.vec_step_async_discrete(v.handle, (*C.int32_t)(unsafe.Pointer(&v.actions[0])))
	return nil
}

// StepResult exposes the per-step output buffers. The slices alias the
// environment's internal buffers and are overwritten by the next Wait.
type StepResult struct {
	// RGB is the agent observation, NumEnvs x ResH x ResW x 3.
	RGB []byte
	// RenderRGB is the hi-res frame, NumEnvs x VideoRes x VideoRes x 3.
	// Empty unless collecting data.
	RenderRGB []byte
	// AudioSegMap is NumEnvs x AudioMapSize trigger flags.
	AudioSegMap []byte
	Rewards     []float32
	Dones       []bool
	NewLevels   []bool
}

// Wait blocks until the submitted step completes and returns views of the
// result buffers.
func (v *VecEnv) Wait() (StepResult, error) {
	if v.closed {
		return StepResult{}, fmt.Errorf("engine: environment is closed")
	}

	for i := range v.rewards {
		v.rewards[i] = 0
		v.dones[i] = false
		v.newLevels[i] = false
	}
	C.vec_wait(
		v.handle,
		(*C.uint8_t)(unsafe.Pointer(&v.rgb[0])),
		(*C.uint8_t)(unsafe.Pointer(&v.renderRGB[0])),
		(*C.uint8_t)(unsafe.Pointer(&v.audioSegMap[0])),
		(*C.float)(unsafe.Pointer(&v.rewards[0])),
		(*C.bool)(unsafe.Pointer(&v.dones[0])),
		(*C.bool)(unsafe.Pointer(&v.newLevels[0])),
	)

	res := StepResult{
		RGB:       v.rgb,
		Rewards:   v.rewards,
		Dones:     make([]bool, v.NumEnvs),
		NewLevels: make([]bool, v.NumEnvs),
	}
	if v.collectData {
		res.RenderRGB = v.renderRGB
		res.AudioSegMap = v.audioSegMap
	}
	for i := 0; i < v.NumEnvs; i++ {
		res.Dones[i] = bool(v.dones[i])
		res.NewLevels[i] = bool(v.newLevels[i])
	}
	return res, nil
}

// Step submits actions and waits for the result.
func (v *VecEnv) Step(actions []int32) (StepResult, error) {
	if err := v.StepAsync(actions); err != nil {
		return StepResult{}, err
	}
	return v.Wait()
}

// Close releases the native environment batch. Idempotent.
func (v *VecEnv) Close() error {
	if v.closed {
		return nil
	}
	C.vec_close(v.handle)
	v.closed = true
	return nil
}
