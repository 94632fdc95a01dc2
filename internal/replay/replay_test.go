package replay

import (
	"path/filepath"
	"reflect"
	"testing"
)

func testGame() *Game {
	g := NewGame()
	g.GameID = 3
	g.LevelSeed = 12345
	g.WorldTheme = 1
	g.AgentTheme = 0
	g.BackgroundThemes = []string{"kenney/Backgrounds/blue_desert.png", "backgrounds/game-backgrounds/seabed.png"}
	g.GroundThemes = []string{"Dirt", "Grass"}
	g.AgentThemes = []string{"Beige", "Blue"}
	g.MonsterNames = map[string][]string{
		"ground":  {"sawHalf"},
		"walking": {"snail", "mouse"},
		"flying":  {"bee"},
	}
	g.Maze = []string{"SSSS", "A..1", "A.^.", "...."}
	g.MazeW = 4
	g.MazeH = 4

	agent := &Agent{X: 1.5, Y: 2.0, VX: -0.4, TimeAlive: 7}
	agent.Derive()
	monster := &Monster{ID: 0, X: 3.0, Y: 1.0, VX: 0.2, Theme: 2, IsWalking: true, Time: 11, AnimFreq: 1}
	monster.Derive()

	g.Frames = []*Frame{
		{
			FrameID:    0,
			FileName:   FrameFileName(3, 0),
			StateTime:  11,
			CoinsEaten: []Coord{{3, 1}},
			Agent:      agent,
			Monsters:   []*Monster{monster},
		},
	}
	g.FlattenMonsterNames()
	return g
}

func TestJSONRoundTrip(t *testing.T) {
	g := testGame()
	path := filepath.Join(t.TempDir(), "level_0003.json")

	if err := g.SaveJSON(path, -1, -1); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded := NewGame()
	if err := loaded.LoadJSON(path); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	if !reflect.DeepEqual(g, loaded) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", g, loaded)
	}
}

func TestSaveJSONFrameWindow(t *testing.T) {
	g := testGame()
	// Duplicate the frame a few times to get a window to slice
	for i := 1; i < 5; i++ {
		f := *g.Frames[0]
		f.FrameID = i
		g.Frames = append(g.Frames, &f)
	}

	path := filepath.Join(t.TempDir(), "window.json")
	if err := g.SaveJSON(path, 1, 3); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded := NewGame()
	if err := loaded.LoadJSON(path); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	if len(loaded.Frames) != 2 {
		t.Fatalf("expected 2 frames in window, got %d", len(loaded.Frames))
	}
	if loaded.Frames[0].FrameID != 1 || loaded.Frames[1].FrameID != 2 {
		t.Errorf("wrong frames in window: %d, %d", loaded.Frames[0].FrameID, loaded.Frames[1].FrameID)
	}
}

func TestAgentPose(t *testing.T) {
	tests := []struct {
		name  string
		agent Agent
		want  string
	}{
		{"at rest", Agent{}, PoseStand},
		{"killed wins over everything", Agent{IsKilled: true, Ladder: true, VY: 1}, PoseHit},
		{"on ladder walk1", Agent{Ladder: true, TimeAlive: 0}, PoseClimb1},
		{"on ladder walk2", Agent{Ladder: true, TimeAlive: 5}, PoseClimb2},
		{"airborne", Agent{VY: -0.5}, PoseJump},
		{"ducking", Agent{Spring: 1.0}, PoseDuck},
		{"walking walk1", Agent{VX: 0.3, TimeAlive: 4}, PoseWalk1},
		{"walking walk2", Agent{VX: 0.3, TimeAlive: 5}, PoseWalk2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.agent.Derive()
			if tc.agent.Pose != tc.want {
				t.Errorf("pose = %q, expected %q", tc.agent.Pose, tc.want)
			}
		})
	}
}

func TestAgentFacing(t *testing.T) {
	a := Agent{VX: -0.1}
	a.Derive()
	if a.IsFacingRight {
		t.Error("negative vx should face left")
	}

	a = Agent{VX: 0}
	a.Derive()
	if !a.IsFacingRight {
		t.Error("zero vx should keep the default right facing")
	}
}

func TestMonsterWalkMode(t *testing.T) {
	tests := []struct {
		name string
		m    Monster
		want bool
	}{
		{"even phase", Monster{Time: 0, AnimFreq: 1}, true},
		{"odd phase", Monster{Time: 1, AnimFreq: 1}, false},
		{"freq divides time", Monster{Time: 10, AnimFreq: 5}, true},
		{"jumping still", Monster{IsJumping: true, VY: 0, Time: 1, AnimFreq: 1}, true},
		{"jumping moving", Monster{IsJumping: true, VY: 0.4, Time: 0, AnimFreq: 1}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.m.Derive()
			if tc.m.Walk1Mode != tc.want {
				t.Errorf("Walk1Mode = %v, expected %v", tc.m.Walk1Mode, tc.want)
			}
		})
	}
}

func TestFlattenMonsterNamesOrder(t *testing.T) {
	g := testGame()
	want := []string{"sawHalf", "snail", "mouse", "bee"}
	if !reflect.DeepEqual(g.FlatMonsterNames, want) {
		t.Errorf("FlatMonsterNames = %v, expected %v", g.FlatMonsterNames, want)
	}
}
