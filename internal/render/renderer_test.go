package render

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/vovakirdan/coinrun-replay/internal/assets"
	"github.com/vovakirdan/coinrun-replay/internal/geom"
	"github.com/vovakirdan/coinrun-replay/internal/replay"
)

// solidAsset builds a synthetic opaque sprite of the given size.
func solidAsset(name string, kind assets.Kind, w, h int, c color.NRGBA, label color.Color) *assets.Asset {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	aspect := float64(h) / float64(w)
	return &assets.Asset{Name: name, Kind: kind, Image: img, Color: label, AspectRatio: aspect}
}

// testGame builds a small level. The camera pins the view near maze row 5,
// so the interesting tiles (a coin and a lava surface) sit at row 6 where
// they land on the canvas for an agent standing at (3, 4).
func testGame() *replay.Game {
	g := replay.NewGame()
	g.GameID = 0
	g.VideoRes = 64
	g.MazeW = 8
	g.MazeH = 8
	g.Zoom = 5.5
	g.Maze = []string{
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"...1^...",
		"........",
	}
	g.MonsterNames = map[string][]string{"ground": {}, "walking": {"snail"}, "flying": {}}
	g.FlattenMonsterNames()
	return g
}

func testFrame(agent *replay.Agent, monsters []*replay.Monster, eaten []replay.Coord) *replay.Frame {
	agent.Derive()
	for _, m := range monsters {
		m.Derive()
	}
	return &replay.Frame{
		FrameID:    0,
		StateTime:  agent.TimeAlive,
		CoinsEaten: eaten,
		Agent:      agent,
		Monsters:   monsters,
	}
}

// testLibrary builds a synthetic asset set matching testGame. Grid scale
// follows the renderer's kx computation.
func testLibrary(g *replay.Game) *assets.Library {
	kx := g.Zoom * float64(g.VideoRes) / float64(g.MazeW)
	tile := int(math.Ceil(kx + 0.5))
	cell := int(math.Ceil(kx))

	lib := assets.NewLibrary()
	table := assets.Colors(assets.SchemeCompact)

	lib.Add(solidAsset(string(rune(assets.WallSurface)), assets.KindWorld, tile, tile,
		color.NRGBA{R: 120, G: 60, B: 10, A: 255}, table.World[assets.WallSurface]))
	lib.Add(solidAsset(string(rune(assets.CoinObj1)), assets.KindWorld, tile, tile,
		color.NRGBA{R: 255, G: 220, B: 0, A: 255}, table.World[assets.CoinObj1]))
	// Lava stays at its source sheet size
	lib.Add(solidAsset(string(rune(assets.LavaSurface)), assets.KindWorld, 16, 16,
		color.NRGBA{R: 255, A: 255}, table.World[assets.LavaSurface]))

	for _, pose := range []string{"stand", "hit", "walk1", "walk2", "jump", "duck"} {
		for _, facing := range []string{"", "_left"} {
			lib.Add(solidAsset(pose+facing, assets.KindAgent, cell, 2*cell,
				color.NRGBA{B: 255, A: 255}, table.Agent))
		}
	}

	for _, pose := range []string{"", "_move", "_dead"} {
		for _, facing := range []string{"", "_right"} {
			lib.Add(solidAsset("snail"+pose+facing, assets.KindMonster, cell, cell,
				color.NRGBA{G: 255, A: 255}, table.Monster["snail"]))
		}
	}

	lib.Add(solidAsset(assets.ShieldKey, assets.KindShield,
		int(math.Ceil(kx*1.15)), int(math.Ceil(kx*2.1)),
		color.NRGBA{R: 100, G: 100, B: 255, A: 128}, table.Shield))
	lib.Add(solidAsset(assets.BackgroundKey, assets.KindBackground,
		int(math.Ceil(float64(g.VideoRes)*g.Zoom)), int(math.Ceil(float64(g.VideoRes)*g.Zoom)),
		color.NRGBA{R: 30, G: 30, B: 80, A: 255}, table.Background))
	return lib
}

func grayPixels(t *testing.T, img image.Image) *image.Gray {
	t.Helper()
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	return gray
}

func countLabel(img *image.Gray, label uint8) int {
	n := 0
	for _, p := range img.Pix {
		if p == label {
			n++
		}
	}
	return n
}

func TestLavaSpansHalfWidthsSumToSheetWidth(t *testing.T) {
	tile := geom.NewRect(10, 20, 45.7, 45.7)
	src := geom.NewRect(0, 0, 16, 16)

	for stateTime := 0; stateTime < 40; stateTime++ {
		_, s1, ok1, _, s2, ok2 := lavaSpans(tile, src, stateTime)
		if !ok1 && !ok2 {
			t.Fatalf("state_time %d: both lava spans empty", stateTime)
		}
		var sum float64
		if ok1 {
			sum += s1.W
		}
		if ok2 {
			sum += s2.W
		}
		if math.Abs(sum-src.W) > 1e-9 {
			t.Errorf("state_time %d: half widths sum to %v, expected %v", stateTime, sum, src.W)
		}
	}
}

func TestFrameDeterministic(t *testing.T) {
	g := testGame()
	lib := testLibrary(g)
	g.Frames = []*replay.Frame{testFrame(&replay.Agent{X: 3, Y: 4}, nil, nil)}

	r := New(g, lib, Options{SingleChannel: true})
	a, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	b, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	if !bytes.Equal(grayPixels(t, a).Pix, grayPixels(t, b).Pix) {
		t.Error("rendering the same frame twice differed")
	}
}

func TestFrameLabels(t *testing.T) {
	g := testGame()
	lib := testLibrary(g)
	g.Frames = []*replay.Frame{testFrame(&replay.Agent{X: 3, Y: 4}, nil, nil)}

	r := New(g, lib, Options{SingleChannel: true})
	img, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	gray := grayPixels(t, img)

	table := assets.Colors(assets.SchemeCompact)
	agentLabel := table.Agent.(color.Gray).Y
	coinLabel := table.World[assets.CoinObj1].(color.Gray).Y
	lavaLabel := table.World[assets.LavaSurface].(color.Gray).Y

	if countLabel(gray, agentLabel) == 0 {
		t.Error("no agent pixels in label map")
	}
	if countLabel(gray, coinLabel) == 0 {
		t.Error("no coin pixels in label map")
	}
	if countLabel(gray, lavaLabel) == 0 {
		t.Error("no lava pixels in label map")
	}
}

func TestEatenCoinNotDrawn(t *testing.T) {
	g := testGame()
	lib := testLibrary(g)
	g.Frames = []*replay.Frame{
		testFrame(&replay.Agent{X: 3, Y: 4}, nil, []replay.Coord{{3, 6}}),
	}

	r := New(g, lib, Options{SingleChannel: true})
	img, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	table := assets.Colors(assets.SchemeCompact)
	coinLabel := table.World[assets.CoinObj1].(color.Gray).Y
	if n := countLabel(grayPixels(t, img), coinLabel); n != 0 {
		t.Errorf("eaten coin still drawn (%d pixels)", n)
	}
}

func TestFullyTransparentAgentNotDrawn(t *testing.T) {
	g := testGame()
	lib := testLibrary(g)
	// killed_animation_frame_cnt 0 puts the fade past 255
	g.Frames = []*replay.Frame{
		testFrame(&replay.Agent{X: 3, Y: 4, IsKilled: true, KilledAnimFrameCnt: 0}, nil, nil),
	}

	r := New(g, lib, Options{SingleChannel: true})
	img, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	table := assets.Colors(assets.SchemeCompact)
	agentLabel := table.Agent.(color.Gray).Y
	if n := countLabel(grayPixels(t, img), agentLabel); n != 0 {
		t.Errorf("fully transparent agent painted %d pixels", n)
	}
}

func TestDyingAgentStillDrawnInLabelMode(t *testing.T) {
	g := testGame()
	lib := testLibrary(g)
	// Late in the countdown the fade is small and the mask is kept
	g.Frames = []*replay.Frame{
		testFrame(&replay.Agent{X: 3, Y: 4, IsKilled: true, KilledAnimFrameCnt: 30}, nil, nil),
	}

	r := New(g, lib, Options{SingleChannel: true})
	img, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	table := assets.Colors(assets.SchemeCompact)
	agentLabel := table.Agent.(color.Gray).Y
	if countLabel(grayPixels(t, img), agentLabel) == 0 {
		t.Error("dying agent missing from label map before fade completes")
	}
}

func TestMonsterDeathShrink(t *testing.T) {
	g := testGame()
	lib := testLibrary(g)

	alive := testFrame(&replay.Agent{X: 3, Y: 4},
		[]*replay.Monster{{ID: 0, X: 4, Y: 5, Theme: 0, AnimFreq: 1}}, nil)
	dead := testFrame(&replay.Agent{X: 3, Y: 4},
		[]*replay.Monster{{ID: 0, X: 4, Y: 5, Theme: 0, IsDead: true, DyingFrameCnt: 0, AnimFreq: 1}}, nil)
	g.Frames = []*replay.Frame{alive, dead}

	r := New(g, lib, Options{SingleChannel: true})
	table := assets.Colors(assets.SchemeCompact)
	label := table.Monster["snail"].(color.Gray).Y

	imgAlive, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	imgDead, err := r.Frame(1)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	nAlive := countLabel(grayPixels(t, imgAlive), label)
	nDead := countLabel(grayPixels(t, imgDead), label)
	if nAlive == 0 {
		t.Fatal("living monster not drawn")
	}
	if nDead >= nAlive {
		t.Errorf("dead monster should shrink: %d -> %d pixels", nAlive, nDead)
	}
}

func TestShieldDrawnInPowerUpMode(t *testing.T) {
	g := testGame()
	lib := testLibrary(g)
	g.Frames = []*replay.Frame{
		testFrame(&replay.Agent{X: 3, Y: 4, PowerUpMode: true}, nil, nil),
	}

	r := New(g, lib, Options{SingleChannel: true})
	img, err := r.Frame(0)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	table := assets.Colors(assets.SchemeCompact)
	shieldLabel := table.Shield.(color.Gray).Y
	if countLabel(grayPixels(t, img), shieldLabel) == 0 {
		t.Error("no shield pixels in power-up mode")
	}
}

func TestMissingAssetIsFatal(t *testing.T) {
	g := testGame()
	lib := assets.NewLibrary() // empty on purpose
	g.Frames = []*replay.Frame{testFrame(&replay.Agent{X: 3, Y: 4}, nil, nil)}

	r := New(g, lib, Options{SingleChannel: true})
	if _, err := r.Frame(0); err == nil {
		t.Fatal("expected error for missing assets")
	}
}

func TestFrameIndexOutOfRange(t *testing.T) {
	g := testGame()
	r := New(g, testLibrary(g), Options{})
	if _, err := r.Frame(0); err == nil {
		t.Fatal("expected error for empty frame list")
	}
}
