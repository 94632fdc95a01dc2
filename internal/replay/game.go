// Package replay defines the serialized record model for CoinRun level
// replays: per-level metadata plus one snapshot per simulation tick. Records
// are built once, from a monitor CSV log or a JSON file, and are read-only
// during rendering.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
)

// Engine constants baked into every recorded replay. The game engine
// hard-codes these and does not write them to the monitor log.
const (
	DefaultZoom   = 5.5
	DefaultBgZoom = 0.4
	DefaultRes    = 1024
	DefaultMazeW  = 64
	DefaultMazeH  = 13
)

// Coord is a maze cell coordinate stored as [x, y].
// Serialized as a two-element array to match the engine's log format.
type Coord [2]int

// Game holds level-wide metadata and the ordered frame sequence of one
// recorded level. Maze dimensions are fixed at load; the struct is not
// mutated after construction except through Reset.
type Game struct {
	GameID      int     `json:"game_id"`
	LevelSeed   int     `json:"level_seed"`
	RLAgentSeed int     `json:"rl_agent_seed"`
	Zoom        float64 `json:"zoom"`
	BgZoom      float64 `json:"bgzoom"`
	WorldTheme  int     `json:"world_theme_n"`
	AgentTheme  int     `json:"agent_theme_n"`

	BackgroundThemes []string            `json:"background_themes"`
	GroundThemes     []string            `json:"ground_themes"`
	AgentThemes      []string            `json:"agent_themes"`
	MonsterNames     map[string][]string `json:"monster_names"`

	VideoRes int `json:"video_res"`
	MazeW    int `json:"maze_w"`
	MazeH    int `json:"maze_h"`

	// Maze rows, one string per row, indexed [y][x] bottom-up in world
	// coordinates. Nil until the level header has been parsed.
	Maze []string `json:"maze"`

	Frames []*Frame `json:"frames"`

	// FlatMonsterNames is the ordered concatenation of the ground, walking
	// and flying monster name groups. Monster theme indices in frames refer
	// into this list. Derived, never serialized.
	FlatMonsterNames []string `json:"-"`
}

// NewGame returns a Game populated with the engine's hard-coded defaults.
func NewGame() *Game {
	return &Game{
		GameID:       -1,
		Zoom:         DefaultZoom,
		BgZoom:       DefaultBgZoom,
		WorldTheme:   -1,
		AgentTheme:   -1,
		MonsterNames: map[string][]string{},
		VideoRes:     DefaultRes,
		MazeW:        DefaultMazeW,
		MazeH:        DefaultMazeH,
	}
}

// Reset clears the per-level state (maze and frames) while keeping theme
// tables, which the log emits only once for the whole session.
func (g *Game) Reset() {
	g.Maze = nil
	g.Frames = nil
}

// FlattenMonsterNames rebuilds FlatMonsterNames from the grouped name
// table. The group order is significant: theme indices recorded by the
// engine assume ground, then walking, then flying.
func (g *Game) FlattenMonsterNames() {
	flat := make([]string, 0,
		len(g.MonsterNames["ground"])+len(g.MonsterNames["walking"])+len(g.MonsterNames["flying"]))
	flat = append(flat, g.MonsterNames["ground"]...)
	flat = append(flat, g.MonsterNames["walking"]...)
	flat = append(flat, g.MonsterNames["flying"]...)
	g.FlatMonsterNames = flat
}

// SaveJSON writes the game to path. A non-negative end selects the frame
// window [start, end); a negative end writes all frames.
func (g *Game) SaveJSON(path string, start, end int) error {
	out := *g
	if end >= 0 {
		if start < 0 {
			start = 0
		}
		if end > len(g.Frames) {
			end = len(g.Frames)
		}
		out.Frames = g.Frames[start:end]
	}
	if out.Frames == nil {
		out.Frames = []*Frame{}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("replay: cannot marshal game %d: %w", g.GameID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("replay: cannot write %s: %w", path, err)
	}
	return nil
}

// LoadJSON replaces the game's contents with the record set read from path.
// Derived fields (poses, animation modes, flattened monster names) are
// recomputed after decoding so they never go stale.
func (g *Game) LoadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("replay: cannot read %s: %w", path, err)
	}

	g.Reset()
	if err := json.Unmarshal(data, g); err != nil {
		return fmt.Errorf("replay: cannot parse %s: %w", path, err)
	}

	for _, f := range g.Frames {
		if f.Agent != nil {
			f.Agent.Derive()
		}
		for _, m := range f.Monsters {
			m.Derive()
		}
	}
	g.FlattenMonsterNames()
	return nil
}

// Frame is one simulation tick: agent state, monster states, and the set of
// coins eaten so far in the level. CoinsEaten is copied by value at parse
// time so frames never alias each other's slices.
type Frame struct {
	FrameID    int        `json:"frame_id"`
	FileName   string     `json:"file_name"`
	StateTime  int        `json:"state_time"`
	CoinsEaten []Coord    `json:"coins_eaten"`
	Agent      *Agent     `json:"agent"`
	Monsters   []*Monster `json:"monsters"`
}

// FrameFileName returns the canonical png file name for a frame of a level.
func FrameFileName(levelID, frameID int) string {
	return fmt.Sprintf("level_%04d_frame_%04d.png", levelID, frameID)
}

// LevelFileName returns the canonical json file name for a level.
func LevelFileName(levelID int) string {
	return fmt.Sprintf("level_%04d.json", levelID)
}
