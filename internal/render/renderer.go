// Package render reconstructs frames from replay records: given one frame's
// state and the level's asset library, it composites exactly the image the
// game engine produced, or the semantic-label version of it. The draw order
// is fixed and must not change: background, world tiles, monsters, agent,
// shield.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/vovakirdan/coinrun-replay/internal/assets"
	"github.com/vovakirdan/coinrun-replay/internal/geom"
	"github.com/vovakirdan/coinrun-replay/internal/replay"
)

// Animation lengths in frames, hard-coded in the game engine.
const (
	deathAnimLength        = 30
	finishedAnimLength     = 20
	monsterDeathAnimLength = 3
)

// deathFadeStep is the per-frame alpha decrement of the dying agent.
const deathFadeStep = 12

// Options selects the output representation.
type Options struct {
	// Original composites the textured sprites; when false the renderer
	// paints flat semantic labels.
	Original bool
	// SingleChannel emits a grayscale label map instead of RGB labels.
	// Ignored when Original is set.
	SingleChannel bool
}

// Renderer composites frames of one game. It is stateless across calls:
// rendering frame i never depends on having rendered frame i-1.
type Renderer struct {
	game *replay.Game
	lib  *assets.Library
	opts Options

	kx, ky float64
}

// New creates a renderer for a game with a loaded asset library.
// The grid scale is derived from the game's zoom and resolution.
func New(game *replay.Game, lib *assets.Library, opts Options) *Renderer {
	kx := game.Zoom * float64(game.VideoRes) / float64(game.MazeW)
	return &Renderer{game: game, lib: lib, opts: opts, kx: kx, ky: kx}
}

// Scale returns the pixel size of one maze cell.
func (r *Renderer) Scale() (kx, ky float64) {
	return r.kx, r.ky
}

// Frame composites the frame at index idx into a fresh image buffer of the
// game's video resolution.
func (r *Renderer) Frame(idx int) (image.Image, error) {
	if idx < 0 || idx >= len(r.game.Frames) {
		return nil, fmt.Errorf("render: frame %d out of range (%d frames)", idx, len(r.game.Frames))
	}
	frame := r.game.Frames[idx]
	if frame.Agent == nil {
		return nil, fmt.Errorf("render: frame %d has no agent", idx)
	}

	res := r.game.VideoRes
	var dst draw.Image
	if !r.opts.Original && r.opts.SingleChannel {
		dst = image.NewGray(image.Rect(0, 0, res, res))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, res, res))
		// Opaque black canvas; the zero NRGBA value is transparent
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{A: 255}), image.Point{}, draw.Src)
	}

	center := float64((res - 1) / 2)
	// The camera follows the agent horizontally only
	dx := -frame.Agent.X*r.kx + center - 0.5*r.kx
	dy := -center + 5.0*r.ky

	if r.opts.Original {
		if err := r.drawBackground(dst, dx, dy); err != nil {
			return nil, err
		}
	}
	if err := r.drawWorld(dst, frame, dx, dy); err != nil {
		return nil, err
	}
	if err := r.drawMonsters(dst, frame, dx, dy); err != nil {
		return nil, err
	}
	if err := r.drawAgent(dst, frame, dx, dy); err != nil {
		return nil, err
	}
	if frame.Agent.PowerUpMode {
		if err := r.drawShield(dst, frame, dx, dy); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// drawBackground tiles the zoomed background sprite with a parallax factor,
// covering the canvas with a 4x3 neighborhood of copies.
func (r *Renderer) drawBackground(dst draw.Image, dx, dy float64) error {
	bg, err := r.lib.Get(assets.BackgroundKey)
	if err != nil {
		return err
	}

	res := float64(r.game.VideoRes)
	center := float64((r.game.VideoRes - 1) / 2)
	zx := res * r.game.Zoom
	zy := zx
	mazeH := float64(r.game.MazeH)

	for tileX := -1; tileX < 3; tileX++ {
		for tileY := -1; tileY < 2; tileY++ {
			rect := geom.NewRect(
				zx*float64(tileX)+center+r.game.BgZoom*(dx+r.kx*mazeH/2)-zx*0.5,
				zy*float64(tileY)+center+r.game.BgZoom*(dy-r.ky*mazeH/2)-zy*0.5,
				zx, zy,
			)
			if rect.OutOfBounds(res, res) {
				continue
			}
			ir := rect.Snap()
			draw.Draw(dst, image.Rect(ir.X, ir.Y, ir.Right(), ir.Bottom()),
				bg.Image, bg.Image.Bounds().Min, draw.Over)
		}
	}
	return nil
}

// drawWorld paints the static tiles inside the camera radius, skipping
// empty cells and already-eaten coins.
func (r *Renderer) drawWorld(dst draw.Image, frame *replay.Frame, dx, dy float64) error {
	g := r.game
	winH := float64(g.VideoRes)
	res := float64(g.VideoRes)

	radius := int(1 + float64(g.MazeW)/g.Zoom)
	ix := int(frame.Agent.X + 0.5)
	iy := int(frame.Agent.Y + 0.5)
	xStart := max(ix-radius, 0)
	xEnd := min(ix+radius+1, g.MazeW)
	yStart := max(iy-radius, 0)
	yEnd := min(iy+radius+1, g.MazeH)

	eaten := make(map[replay.Coord]bool, len(frame.CoinsEaten))
	for _, c := range frame.CoinsEaten {
		eaten[c] = true
	}

	for y := yStart; y < yEnd; y++ {
		for x := xStart; x < xEnd; x++ {
			wkey := g.Maze[y][x]
			if wkey == assets.Space {
				continue
			}
			// Eaten coins render as empty space, but the maze keeps
			// the coin so frames can be drawn in any order
			if eaten[replay.Coord{x, y}] {
				continue
			}

			a, err := r.lib.Get(string(wkey))
			if err != nil {
				return fmt.Errorf("render: tile %q at (%d,%d): %w", wkey, x, y, err)
			}

			// Slightly oversized so adjacent tiles overlap instead of
			// leaving seams at fractional offsets
			tileRect := geom.NewRect(
				r.kx*float64(x)+dx-0.1,
				winH-r.ky*float64(y)+dy-0.1,
				r.kx+0.5+0.2,
				r.ky+0.5+0.2,
			)
			if tileRect.OutOfBounds(res, res) {
				continue
			}

			if assets.IsLava(wkey) {
				r.drawLava(dst, a, tileRect, frame.StateTime)
				continue
			}
			r.paint(dst, tileRect.Snap(), a.Color, a.Image)
		}
	}
	return nil
}

// drawLava scrolls the unscaled lava sheet horizontally by the animation
// phase and paints it as two crops that wrap around within the tile.
func (r *Renderer) drawLava(dst draw.Image, a *assets.Asset, tileRect geom.Rect, stateTime int) {
	b := a.Image.Bounds()
	src := geom.NewRect(0, 0, float64(b.Dx()), float64(b.Dy()))

	d1, s1, ok1, d2, s2, ok2 := lavaSpans(tileRect, src, stateTime)
	if ok1 {
		r.paint(dst, d1.Snap(), a.Color, crop(a.Image, s1.SnapOuter()))
	}
	if ok2 {
		r.paint(dst, d2.Snap(), a.Color, crop(a.Image, s2.SnapOuter()))
	}
}

// lavaSpans splits the scrolling lava sheet into up to two destination and
// source rect pairs. The two source half-widths always sum to the full sheet
// width; the destination spans get a half-pixel of overlap so the seam never
// shows.
func lavaSpans(tileRect, src geom.Rect, stateTime int) (d1, s1 geom.Rect, ok1 bool, d2, s2 geom.Rect, ok2 bool) {
	// Phase in [0,1) of the scroll cycle, negated to scroll leftward
	tr := float64(stateTime) * 0.1
	tr -= math.Trunc(tr)
	tr = -tr

	d1, d2, s1, s2 = tileRect, tileRect, src, src
	d1.X += tr * tileRect.W
	d2.X += tileRect.W + tr*tileRect.W
	s1.X += -tr * src.W
	s2.X += -src.W - tr*src.W

	var dok1, dok2, sok1, sok2 bool
	d1, dok1 = d1.Intersect(tileRect)
	if dok1 {
		d1.W += 0.5
	}
	d2, dok2 = d2.Intersect(tileRect)
	if dok2 {
		d2.X -= 0.5
		d2.W += 0.5
	}
	s1, sok1 = s1.Intersect(src)
	s2, sok2 = s2.Intersect(src)

	return d1, s1, dok1 && sok1, d2, s2, dok2 && sok2
}

func (r *Renderer) drawMonsters(dst draw.Image, frame *replay.Frame, dx, dy float64) error {
	winH := float64(r.game.VideoRes)

	for _, m := range frame.Monsters {
		var rect geom.IntRect
		if m.IsDead {
			// Dead monsters flatten toward the ground over the death
			// animation
			dying := max(m.DyingFrameCnt, 0)
			shrink := float64(monsterDeathAnimLength-dying) * 0.8 / monsterDeathAnimLength
			rect = geom.IntRect{
				X: int(math.Floor(r.kx*m.X + dx)),
				Y: int(math.Floor(winH - r.ky*m.Y + dy + r.ky*shrink)),
				W: int(math.Ceil(r.kx)),
				H: int(math.Ceil(r.ky * (1 - shrink))),
			}
		} else {
			rect = geom.IntRect{
				X: int(math.Floor(r.kx*m.X + dx)),
				Y: int(math.Floor(winH - r.ky*m.Y + dy)),
				W: int(math.Ceil(r.kx)),
				H: int(math.Ceil(r.ky)),
			}
		}

		if m.Theme < 0 || m.Theme >= len(r.game.FlatMonsterNames) {
			return fmt.Errorf("render: monster theme %d out of range (%d names)", m.Theme, len(r.game.FlatMonsterNames))
		}
		key := r.game.FlatMonsterNames[m.Theme]
		switch {
		case m.IsDead:
			key += "_dead"
		case !m.Walk1Mode:
			key += "_move"
		}
		if m.VX > 0 {
			key += "_right"
		}

		a, err := r.lib.Get(key)
		if err != nil {
			return fmt.Errorf("render: monster %d: %w", m.ID, err)
		}
		r.paint(dst, rect, a.Color, a.Image)
	}
	return nil
}

// drawAgent paints the agent after the monsters so it is always in front.
func (r *Renderer) drawAgent(dst draw.Image, frame *replay.Frame, dx, dy float64) error {
	agent := frame.Agent
	winH := float64(r.game.VideoRes)

	key := agent.Pose
	if !agent.IsFacingRight {
		key += "_left"
	}
	a, err := r.lib.Get(key)
	if err != nil {
		return fmt.Errorf("render: agent pose %q: %w", key, err)
	}

	// The draw height follows the sprite's aspect ratio, so a swapped-in
	// character with a different sheet shape still lands on its feet
	rect := geom.IntRect{
		X: int(math.Floor(r.kx*agent.X + dx)),
		Y: int(math.Floor(winH - r.ky*(agent.Y+a.AspectRatio-1) + dy)),
		W: int(math.Ceil(r.kx)),
		H: int(math.Ceil(a.AspectRatio * r.ky)),
	}

	mask := a.Image
	if agent.IsKilled {
		transparency := (deathAnimLength + 1 - agent.KilledAnimFrameCnt) * deathFadeStep
		if transparency > 255 {
			// Fully faded out; nothing to draw
			return nil
		}
		if r.opts.Original {
			mask = fadeAlpha(a.Image, transparency)
		}
		// Label mode keeps the full mask until the fade completes
	}

	r.paint(dst, rect, a.Color, mask)
	return nil
}

// drawShield paints the power-up bubble around the agent. The engine
// hard-codes its pixel nudges for a 1024 canvas, so they scale with the
// actual resolution.
func (r *Renderer) drawShield(dst draw.Image, frame *replay.Frame, dx, dy float64) error {
	a, err := r.lib.Get(assets.ShieldKey)
	if err != nil {
		return err
	}

	agent := frame.Agent
	winH := float64(r.game.VideoRes)
	resScale := float64(r.game.VideoRes) / 1024

	rect := geom.IntRect{
		X: int(math.Floor(r.kx*agent.X + dx - 7*resScale)),
		Y: int(math.Floor(winH - r.ky*(agent.Y+1) + dy + 8*resScale)),
		W: int(math.Ceil(r.kx * 1.15)),
		H: int(math.Ceil(r.ky * 2.1)),
	}
	// The bubble follows the agent down when crouching
	if agent.Pose == replay.PoseDuck {
		rect.Y += int(math.Floor(8 * resScale))
	}

	r.paint(dst, rect, a.Color, a.Image)
	return nil
}

// paint composites a sprite into the destination rectangle. In label mode
// the sprite acts only as a mask for its uniform semantic color. A sprite
// whose size differs from the rectangle (dying monsters, lava crops) is
// resized first: nearest neighbour for labels so values never bleed, smooth
// for original colors.
func (r *Renderer) paint(dst draw.Image, rect geom.IntRect, c color.Color, sprite *image.NRGBA) {
	if rect.W <= 0 || rect.H <= 0 {
		return
	}
	b := sprite.Bounds()
	if b.Dx() != rect.W || b.Dy() != rect.H {
		sprite = assets.Resize(sprite, rect.W, rect.H, r.opts.Original)
	}

	dr := image.Rect(rect.X, rect.Y, rect.Right(), rect.Bottom())
	if r.opts.Original {
		draw.Draw(dst, dr, sprite, sprite.Bounds().Min, draw.Over)
		return
	}
	draw.DrawMask(dst, dr, image.NewUniform(c), image.Point{}, sprite, sprite.Bounds().Min, draw.Over)
}

// crop returns the sub-image of src covered by rect, clamped to the source
// bounds.
func crop(src *image.NRGBA, rect geom.IntRect) *image.NRGBA {
	r := image.Rect(rect.X, rect.Y, rect.Right(), rect.Bottom()).Intersect(src.Bounds())
	return src.SubImage(r).(*image.NRGBA)
}

// fadeAlpha returns a copy of src with transparency subtracted from every
// alpha value, clamped at zero. Used for the agent's death fade.
func fadeAlpha(src *image.NRGBA, transparency int) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	for i := 3; i < len(dst.Pix); i += 4 {
		v := int(dst.Pix[i]) - transparency
		if v < 0 {
			v = 0
		}
		dst.Pix[i] = uint8(v)
	}
	return dst
}
