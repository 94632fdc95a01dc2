// Package video slices rendered level replays into fixed-length clips and
// assembles them into mp4 files with a mixed soundtrack: per-frame sound
// effects on one track, the looping background tune on another, sped up
// while power-up mode is active. Mixing and muxing shell out to ffmpeg.
package video

import (
	"context"
	"fmt"
	"image/png"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/coinrun-replay/internal/assets"
	"github.com/vovakirdan/coinrun-replay/internal/audio"
	"github.com/vovakirdan/coinrun-replay/internal/render"
	"github.com/vovakirdan/coinrun-replay/internal/replay"
)

// Options configures a Generator. The zero value is not usable; fill it
// from the pipeline config.
type Options struct {
	// InputDir is the collection directory, holding json_metadata/ and
	// audio_semantic_map/ subdirectories. Outputs land in videos/ and
	// video_metadata/ next to them.
	InputDir string

	// AssetRoot is the directory holding the kenney sprite sets and the
	// sound_effects directory.
	AssetRoot string

	FPS           int
	FramesPerClip int
	// Stride is the frame distance between consecutive clip starts.
	Stride int
	// AudioRate is the soundtrack sample rate in Hz.
	AudioRate int
	// PowerUpRate multiplies the background track's playback rate while
	// power-up mode is active.
	PowerUpRate int

	// OnClip, when set, is called after each finished clip.
	OnClip func(levelNum int, name string, startFrame, endFrame int) error
}

// DefaultOptions returns the clip parameters the dataset was published
// with: 96-frame clips at 30 fps, non-overlapping, 48 kHz audio.
func DefaultOptions(inputDir, assetRoot string) Options {
	return Options{
		InputDir:      inputDir,
		AssetRoot:     assetRoot,
		FPS:           30,
		FramesPerClip: 96,
		Stride:        96,
		AudioRate:     48000,
		PowerUpRate:   3,
	}
}

// Background tunes per world theme.
var backgroundTracks = [2]string{"bg_japan.wav", "bg_technicolor.wav"}

// Generator renders and assembles clips for every interesting level of a
// collection run.
type Generator struct {
	opts   Options
	logger *log.Logger

	effects   *effectBank
	audioMaps map[int][]Row

	levelFiles []string
	prefix     string
	videoDir   string
	metaDir    string

	// one asset library per world theme, built once up front
	libs map[int]*assets.Library

	// run invokes ffmpeg; swapped out in tests
	run func(ctx context.Context, args ...string) error
}

// NewGenerator loads the sound effects, audio maps and sprite libraries
// for a collection directory.
func NewGenerator(opts Options, logger *log.Logger) (*Generator, error) {
	g := &Generator{
		opts:     opts,
		logger:   logger,
		prefix:   filepath.Base(opts.InputDir) + "_",
		videoDir: filepath.Join(opts.InputDir, "videos"),
		metaDir:  filepath.Join(opts.InputDir, "video_metadata"),
		libs:     make(map[int]*assets.Library),
		run:      runFFmpeg,
	}

	var err error
	g.effects, err = loadEffectBank(filepath.Join(opts.AssetRoot, "sound_effects"))
	if err != nil {
		return nil, err
	}
	g.audioMaps, err = ParseAudioMap(filepath.Join(opts.InputDir, "audio_semantic_map", "audio_map.txt"))
	if err != nil {
		return nil, err
	}

	g.levelFiles, err = filepath.Glob(filepath.Join(opts.InputDir, "json_metadata", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("video: listing level files: %w", err)
	}
	if len(g.levelFiles) == 0 {
		return nil, fmt.Errorf("video: no level files under %s", opts.InputDir)
	}
	sort.Strings(g.levelFiles)

	if err := os.MkdirAll(g.videoDir, 0o755); err != nil {
		return nil, fmt.Errorf("video: %w", err)
	}
	if err := os.MkdirAll(g.metaDir, 0o755); err != nil {
		return nil, fmt.Errorf("video: %w", err)
	}

	if err := g.loadLibraries(); err != nil {
		return nil, err
	}
	return g, nil
}

// loadLibraries builds the sprite library for each world theme using the
// grid scale of the first recorded level. All levels of a run share the
// engine's resolution and maze size, so one library pair serves them all.
func (g *Generator) loadLibraries() error {
	game := replay.NewGame()
	if err := game.LoadJSON(g.levelFiles[0]); err != nil {
		return err
	}
	kx := game.Zoom * float64(game.VideoRes) / float64(game.MazeW)
	zx := float64(game.VideoRes) * game.Zoom
	table := assets.Colors(assets.SchemeRGB)

	for theme := range backgroundTracks {
		themed := *game
		themed.WorldTheme = theme
		files, err := assets.FilesFor(&themed)
		if err != nil {
			return err
		}
		lib, err := assets.Load(files, table, g.opts.AssetRoot, kx, kx, true)
		if err != nil {
			return err
		}
		if err := lib.LoadBackground(files, table, g.opts.AssetRoot, zx, zx); err != nil {
			return err
		}
		g.libs[theme] = lib
	}
	return nil
}

// Generate assembles clips for every interesting level and returns how
// many were produced.
func (g *Generator) Generate(ctx context.Context) (int, error) {
	total := 0
	for _, path := range g.levelFiles {
		m := levelHeaderRe.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			return total, fmt.Errorf("video: level file %s has no level number", path)
		}
		levelNum := atoiLevel(m[1])

		game := replay.NewGame()
		if err := game.LoadJSON(path); err != nil {
			return total, err
		}
		if !g.interestingLevel(game, levelNum) {
			g.logger.Debug("skipping level", "level", levelNum, "frames", len(game.Frames))
			continue
		}

		n, err := g.clipsForLevel(ctx, game, levelNum)
		if err != nil {
			return total, err
		}
		g.logger.Info("level done", "level", levelNum, "clips", n)
		total += n
	}
	return total, nil
}

func (g *Generator) interestingLevel(game *replay.Game, levelNum int) bool {
	return Interesting(g.audioMaps[levelNum], len(game.Frames), g.opts.FramesPerClip)
}

// clipsForLevel renders every full clip of one level. The first clip's
// start frame is drawn from the level seed so reruns cut identical clips.
func (g *Generator) clipsForLevel(ctx context.Context, game *replay.Game, levelNum int) (int, error) {
	n := len(game.Frames)
	fpc := g.opts.FramesPerClip

	rng := rand.New(rand.NewSource(int64(game.LevelSeed)))
	maxStart := n - fpc
	if maxStart > g.opts.Stride {
		maxStart = g.opts.Stride
	}
	if maxStart < 0 {
		maxStart = 0
	}
	first := rng.Intn(maxStart + 1)

	r := render.New(game, g.libs[game.WorldTheme], render.Options{Original: true})

	clips := 0
	for start := first; start+fpc <= n; start += g.opts.Stride {
		name := fmt.Sprintf("%slevel_%04d_video_frames_%04d_to_%04d", g.prefix, levelNum, start, start+fpc-1)
		rows := g.audioMaps[levelNum][start : start+fpc]

		if err := g.encodeClip(ctx, r, start, g.videoPath(name+"_tmp.mp4")); err != nil {
			return clips, err
		}
		if err := game.SaveJSON(filepath.Join(g.metaDir, name+".json"), start, start+fpc); err != nil {
			return clips, err
		}
		if err := g.writeEffectsTrack(g.videoPath(name+"_effects.wav"), rows); err != nil {
			return clips, err
		}
		if err := g.writeBackgroundTracks(name, rows, game.WorldTheme, clips); err != nil {
			return clips, err
		}
		if err := g.mixAndMux(ctx, name); err != nil {
			return clips, err
		}
		if g.opts.OnClip != nil {
			if err := g.opts.OnClip(levelNum, name, start, start+fpc); err != nil {
				return clips, err
			}
		}
		clips++
	}
	return clips, nil
}

// encodeClip renders FramesPerClip frames starting at start and pipes them
// to ffmpeg as a png stream.
func (g *Generator) encodeClip(ctx context.Context, r *render.Renderer, start int, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "image2pipe", "-vcodec", "png", "-r", fmt.Sprint(g.opts.FPS), "-i", "-",
		"-pix_fmt", "yuv420p", outPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("video: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("video: starting ffmpeg: %w", err)
	}

	encodeErr := func() error {
		defer stdin.Close()
		for i := start; i < start+g.opts.FramesPerClip; i++ {
			img, err := r.Frame(i)
			if err != nil {
				return err
			}
			if err := png.Encode(stdin, img); err != nil {
				return fmt.Errorf("video: encoding frame %d: %w", i, err)
			}
		}
		return nil
	}()

	waitErr := cmd.Wait()
	if encodeErr != nil {
		return encodeErr
	}
	if waitErr != nil {
		return fmt.Errorf("video: ffmpeg encode of %s: %w", outPath, waitErr)
	}
	return nil
}

// writeBackgroundTracks writes the two background stems of one clip. The
// power-up stem carries the tune at PowerUpRate times speed and the normal
// stem at normal speed; each is silent while the other plays, so a plain
// two-input mix reassembles the full track.
func (g *Generator) writeBackgroundTracks(name string, rows []Row, theme, clipIndex int) error {
	bg, err := audio.ReadFile(filepath.Join(g.opts.AssetRoot, "sound_effects", backgroundTracks[theme]))
	if err != nil {
		return err
	}
	params := bg.Params()
	clipDuration := float64(g.opts.FramesPerClip) / float64(g.opts.FPS)

	// stagger the tune across clips, leaving room for a full power-up
	// playthrough before the file ends
	window := params.Duration() - clipDuration*float64(g.opts.PowerUpRate)
	start := 0.0
	if window > 0 {
		start = float64(clipIndex) * clipDuration
		for start >= window {
			start -= window
		}
	}
	bg.ReadFrames(int(float64(g.opts.AudioRate) * start))

	pmParams := params
	pmParams.SampleRate = g.opts.AudioRate * g.opts.PowerUpRate
	pm, err := audio.Create(g.videoPath(name+"_pm_bg.wav"), pmParams)
	if err != nil {
		return err
	}
	nmParams := params
	nmParams.SampleRate = g.opts.AudioRate
	nm, err := audio.Create(g.videoPath(name+"_nm_bg.wav"), nmParams)
	if err != nil {
		pm.Close()
		return err
	}

	spf := g.samplesPerFrame()
	for _, row := range rows {
		if row.PowerUpMode() {
			err = pm.WriteFrames(bg.ReadFrames(spf * g.opts.PowerUpRate))
			if err == nil {
				err = nm.WriteFrames(audio.Silence(nmParams, spf))
			}
		} else {
			err = nm.WriteFrames(bg.ReadFrames(spf))
			if err == nil {
				err = pm.WriteFrames(audio.Silence(pmParams, spf*g.opts.PowerUpRate))
			}
		}
		if err != nil {
			break
		}
	}
	if cerr := pm.Close(); err == nil {
		err = cerr
	}
	if cerr := nm.Close(); err == nil {
		err = cerr
	}
	return err
}

// mixAndMux combines the background stems with the effects track and muxes
// the result into the final clip, then removes the intermediates.
func (g *Generator) mixAndMux(ctx context.Context, name string) error {
	if err := g.run(ctx, "-y",
		"-i", g.videoPath(name+"_pm_bg.wav"),
		"-i", g.videoPath(name+"_nm_bg.wav"),
		"-filter_complex", "amix=inputs=2:duration=longest",
		g.videoPath(name+"_bg_mix.wav")); err != nil {
		return err
	}
	if err := g.run(ctx, "-y",
		"-i", g.videoPath(name+"_bg_mix.wav"),
		"-i", g.videoPath(name+"_effects.wav"),
		"-filter_complex", "amix=inputs=2:duration=longest",
		g.videoPath(name+"_final_mix.wav")); err != nil {
		return err
	}
	if err := g.run(ctx, "-y",
		"-i", g.videoPath(name+"_final_mix.wav"),
		"-i", g.videoPath(name+"_tmp.mp4"),
		g.videoPath(name+".mp4")); err != nil {
		return err
	}

	for _, suffix := range []string{"_pm_bg.wav", "_nm_bg.wav", "_bg_mix.wav", "_effects.wav", "_final_mix.wav", "_tmp.mp4"} {
		if err := os.Remove(g.videoPath(name + suffix)); err != nil {
			return fmt.Errorf("video: %w", err)
		}
	}
	return nil
}

func (g *Generator) videoPath(name string) string {
	return filepath.Join(g.videoDir, name)
}

func (g *Generator) samplesPerFrame() int {
	return g.opts.AudioRate / g.opts.FPS
}

func runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("video: ffmpeg %v: %w: %s", args, err, out)
	}
	return nil
}
