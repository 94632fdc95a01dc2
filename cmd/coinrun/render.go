package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/coinrun-replay/internal/assets"
	"github.com/vovakirdan/coinrun-replay/internal/progress"
	"github.com/vovakirdan/coinrun-replay/internal/render"
	"github.com/vovakirdan/coinrun-replay/internal/replay"
)

var (
	flagRenderFrame     int
	flagRenderLevel     int
	flagRenderInputJSON string
	flagRenderOutput    string
	flagRenderOriginal  bool
	flagRenderVideo     bool
	flagRenderSingle    bool
	flagRenderReadable  bool
)

var renderCmd = &cobra.Command{
	Use:   "render <restore_id>",
	Short: "Render replay frames as semantic maps or original-color images",
	Long: `Loads a level's json metadata and composites its frames. By default every
frame of the level is written as a png semantic map; a single frame,
original colors or an mp4 rendition can be selected with flags.

Examples:
  coinrun render paper_500 --level 1 --frame 11
  coinrun render paper_500 --level 1
  coinrun render paper_500 --level 1 --save-as-video --original
  coinrun render paper_500 --level 0 --single-channel --readable`,
	Args: cobra.ExactArgs(1),
	Run:  runRender,
}

func init() {
	renderCmd.Flags().IntVar(&flagRenderFrame, "frame", -1, "Frame id to render, -1 for all frames")
	renderCmd.Flags().IntVar(&flagRenderLevel, "level", 0, "Level id to load json metadata for")
	renderCmd.Flags().StringVar(&flagRenderInputJSON, "input-json", "", "Input json file (default: derived from level id)")
	renderCmd.Flags().StringVar(&flagRenderOutput, "output-folder", "constructed_data", "Output folder name inside the run directory")
	renderCmd.Flags().BoolVar(&flagRenderOriginal, "original", false, "Composite original-color frames instead of semantic maps")
	renderCmd.Flags().BoolVar(&flagRenderVideo, "save-as-video", false, "Save an mp4 instead of pngs (only with --frame -1)")
	renderCmd.Flags().BoolVar(&flagRenderSingle, "single-channel", false, "Single-channel labels instead of RGB labels")
	renderCmd.Flags().BoolVar(&flagRenderReadable, "readable", false, "Spread label values over 0-255 for inspection")
}

func runRender(cmd *cobra.Command, args []string) {
	cfg, err := loadPipelineConfig()
	if err != nil {
		fatal("loading config", err)
	}
	dir := runDir(cfg, args[0])

	inputJSON := flagRenderInputJSON
	if inputJSON == "" {
		inputJSON = filepath.Join(dir, "json_metadata", replay.LevelFileName(flagRenderLevel))
	}
	outputDir := filepath.Join(dir, flagRenderOutput)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fatal("creating output folder", err)
	}

	game := replay.NewGame()
	if err := game.LoadJSON(inputJSON); err != nil {
		fatal("loading level", err)
	}

	scheme := assets.SchemeRGB
	switch {
	case flagRenderSingle && flagRenderReadable:
		scheme = assets.SchemeReadable
	case flagRenderSingle:
		scheme = assets.SchemeCompact
	}

	r, err := buildRenderer(game, cfg.AssetRoot, scheme, flagRenderOriginal)
	if err != nil {
		fatal("loading assets", err)
	}

	switch {
	case flagRenderFrame >= 0:
		if flagRenderFrame >= len(game.Frames) {
			fatal("rendering", fmt.Errorf("frame %d out of range (%d frames)", flagRenderFrame, len(game.Frames)))
		}
		if err := saveFramePNG(r, flagRenderFrame, flagRenderLevel, outputDir); err != nil {
			fatal("rendering", err)
		}
		fmt.Printf("Rendered frame %d of level %d to %s\n", flagRenderFrame, flagRenderLevel, outputDir)

	case flagRenderVideo:
		base := strings.TrimSuffix(filepath.Base(inputJSON), filepath.Ext(inputJSON))
		outPath := filepath.Join(outputDir, base+"_constructed.mp4")
		if err := saveLevelVideo(r, game, outPath, cfg.Video.FPS); err != nil {
			fatal("rendering", err)
		}
		fmt.Printf("Rendered %d frames to %s\n", len(game.Frames), outPath)

	default:
		bar := progress.New(logger, "rendering", len(game.Frames))
		for fi := range game.Frames {
			if err := saveFramePNG(r, fi, flagRenderLevel, outputDir); err != nil {
				bar.Finish()
				fatal("rendering", err)
			}
			bar.Add(1)
		}
		bar.Finish()
		fmt.Printf("Rendered %d frames of level %d to %s\n", len(game.Frames), flagRenderLevel, outputDir)
	}
}

// buildRenderer loads the level's asset library and wraps it in a renderer.
func buildRenderer(game *replay.Game, assetRoot string, scheme assets.Scheme, original bool) (*render.Renderer, error) {
	files, err := assets.FilesFor(game)
	if err != nil {
		return nil, err
	}
	table := assets.Colors(scheme)
	kx := game.Zoom * float64(game.VideoRes) / float64(game.MazeW)
	lib, err := assets.Load(files, table, assetRoot, kx, kx, original)
	if err != nil {
		return nil, err
	}
	if original {
		zx := float64(game.VideoRes) * game.Zoom
		if err := lib.LoadBackground(files, table, assetRoot, zx, zx); err != nil {
			return nil, err
		}
	}
	return render.New(game, lib, render.Options{
		Original:      original,
		SingleChannel: scheme.SingleChannel(),
	}), nil
}

func saveFramePNG(r *render.Renderer, frameID, levelID int, outputDir string) error {
	img, err := r.Frame(frameID)
	if err != nil {
		return err
	}
	return assets.WritePNG(filepath.Join(outputDir, replay.FrameFileName(levelID, frameID)), img)
}

// saveLevelVideo pipes every frame of the level through ffmpeg.
func saveLevelVideo(r *render.Renderer, game *replay.Game, outPath string, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	cmd := exec.CommandContext(context.Background(), "ffmpeg", "-y",
		"-f", "image2pipe", "-vcodec", "png", "-r", fmt.Sprint(fps), "-i", "-",
		"-pix_fmt", "yuv420p", outPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	bar := progress.New(logger, "rendering", len(game.Frames))
	encodeErr := func() error {
		defer stdin.Close()
		for fi := range game.Frames {
			img, err := r.Frame(fi)
			if err != nil {
				return err
			}
			if err := png.Encode(stdin, img); err != nil {
				return err
			}
			bar.Add(1)
		}
		return nil
	}()
	bar.Finish()

	waitErr := cmd.Wait()
	if encodeErr != nil {
		return encodeErr
	}
	return waitErr
}
