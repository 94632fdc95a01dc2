package assets

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // background themes may ship as jpeg
	"image/png"
	"math"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// Kind classifies an asset for sizing and keying purposes.
type Kind int

const (
	KindWorld Kind = iota
	KindAgent
	KindMonster
	KindShield
	KindBackground
)

// Asset is one loaded sprite: the prepared bitmap, its semantic label color
// and the source aspect ratio (height over width), which drives the agent's
// draw rectangle.
type Asset struct {
	Name        string
	Kind        Kind
	Image       *image.NRGBA
	Color       color.Color
	AspectRatio float64
}

// Library holds every asset of a level keyed by the renderer's lookup keys:
// tile symbols, agent pose+facing, monster name+pose+facing, "shield" and
// "background".
type Library struct {
	assets map[string]*Asset
}

// NewLibrary returns an empty library. Tests use this with synthetic assets.
func NewLibrary() *Library {
	return &Library{assets: make(map[string]*Asset)}
}

// Add registers an asset under its name, replacing any previous entry.
func (l *Library) Add(a *Asset) {
	l.assets[a.Name] = a
}

// Get returns the asset for a key. A missing key means the replay references
// sprites that were never loaded; callers treat that as fatal.
func (l *Library) Get(key string) (*Asset, error) {
	a, ok := l.assets[key]
	if !ok {
		return nil, fmt.Errorf("assets: %q not in library", key)
	}
	return a, nil
}

// Load reads and prepares every sprite a game needs at the given grid scale.
// In label mode (original = false) alpha channels are binarized so resized
// sprites still cut clean masks. The background is not loaded here; it
// follows the zoom rather than the grid, see LoadBackground.
func Load(files Files, table Table, root string, kx, ky float64, original bool) (*Library, error) {
	lib := NewLibrary()
	binarize := !original

	for sym, file := range files.World {
		c, ok := table.World[sym]
		if !ok {
			// Tile present in the sprite set but not in the label
			// table (spikes in compact mode); labels fall back to
			// background
			c = table.Background
		}
		a, err := load(root, file, string(sym), KindWorld, kx, ky, c, false, binarize)
		if err != nil {
			return nil, err
		}
		lib.Add(a)
	}

	// Agent faces right by default; the _left variant is flipped.
	for pose, file := range files.Agent {
		for _, facing := range []string{"", "_left"} {
			a, err := load(root, file, pose+facing, KindAgent, kx, ky, table.Agent, facing != "", binarize)
			if err != nil {
				return nil, err
			}
			lib.Add(a)
		}
	}

	// Monsters face left by default; the _right variant is flipped. Each
	// pose is its own sheet file.
	for name, file := range files.Monster {
		c, ok := table.Monster[name]
		if !ok {
			return nil, fmt.Errorf("assets: no semantic color for monster %q", name)
		}
		base := file[:len(file)-len(filepath.Ext(file))]
		for _, pose := range monsterPoses {
			for _, facing := range []string{"", "_right"} {
				a, err := load(root, base+pose+".png", name+pose+facing, KindMonster, kx, ky, c, facing != "", binarize)
				if err != nil {
					return nil, err
				}
				lib.Add(a)
			}
		}
	}

	shield, err := load(root, files.Shield, ShieldKey, KindShield, kx, ky, table.Shield, false, binarize)
	if err != nil {
		return nil, err
	}
	lib.Add(shield)

	return lib, nil
}

// LoadBackground loads the level background sized to the zoomed viewport
// (zx by zy pixels) and adds it to the library.
func (l *Library) LoadBackground(files Files, table Table, root string, zx, zy float64) error {
	a, err := load(root, files.Background, BackgroundKey, KindBackground, zx, zy, table.Background, false, false)
	if err != nil {
		return err
	}
	l.Add(a)
	return nil
}

// load reads one sprite and applies the per-kind sizing rules.
func load(root, file, name string, kind Kind, kx, ky float64, c color.Color, flip, binarize bool) (*Asset, error) {
	src, err := readImage(filepath.Join(root, filepath.FromSlash(file)))
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	aspect := float64(b.Dy()) / float64(b.Dx())

	img := src
	switch kind {
	case KindWorld:
		// Lava keeps its source size: the scroll animation crops it at
		// draw time
		if name != string(LavaMiddle) && name != string(LavaSurface) {
			img = Resize(img, int(math.Ceil(kx+0.5)), int(math.Ceil(ky+0.5)), true)
		}
	case KindAgent:
		img = Resize(img, int(math.Ceil(kx)), int(math.Ceil(aspect*ky)), true)
	case KindShield:
		// Sized for the stock 1:2 alien sprite
		img = Resize(img, int(math.Ceil(kx*1.15)), int(math.Ceil(ky*2.1)), true)
	case KindMonster, KindBackground:
		img = Resize(img, int(math.Ceil(kx)), int(math.Ceil(ky)), true)
	default:
		return nil, fmt.Errorf("assets: unknown kind %d", kind)
	}

	if flip {
		img = FlipHorizontal(img)
	}
	// Must happen after resizing, which interpolates fresh alpha values
	if binarize {
		BinarizeAlpha(img)
	}

	return &Asset{
		Name:        name,
		Kind:        kind,
		Image:       img,
		Color:       c,
		AspectRatio: aspect,
	}, nil
}

func readImage(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot open %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot decode %s: %w", path, err)
	}
	return toNRGBA(src), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// Resize scales an image to w by h pixels. Smooth selects Catmull-Rom
// resampling; otherwise nearest neighbour is used, which keeps label masks
// free of interpolated values.
func Resize(src *image.NRGBA, w, h int, smooth bool) *image.NRGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if smooth {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	} else {
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}
	return dst
}

// FlipHorizontal returns a left-right mirrored copy.
func FlipHorizontal(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetNRGBA(b.Dx()-1-x, y, src.NRGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// BinarizeAlpha raises every non-zero alpha value to 255, in place.
func BinarizeAlpha(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			img.Pix[i] = 255
		}
	}
}

// WritePNG encodes an image to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("assets: cannot create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("assets: cannot encode %s: %w", path, err)
	}
	return f.Close()
}
