package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/coinrun-replay/internal/catalog"
	"github.com/vovakirdan/coinrun-replay/internal/video"
)

var videoCmd = &cobra.Command{
	Use:   "video <restore_id>",
	Short: "Assemble audio-mixed video clips from a run",
	Long: `Slices every interesting level of the run into fixed-length clips,
renders them in original colors and mixes the soundtrack from the run's
audio maps: per-frame sound effects plus the looping background tune,
sped up during power-up mode. Requires ffmpeg on the PATH.

Example:
  coinrun video paper_500`,
	Args: cobra.ExactArgs(1),
	Run:  runVideo,
}

func runVideo(cmd *cobra.Command, args []string) {
	cfg, err := loadPipelineConfig()
	if err != nil {
		fatal("loading config", err)
	}
	dir := runDir(cfg, args[0])

	opts := video.DefaultOptions(dir, cfg.AssetRoot)
	if cfg.Video.FPS > 0 {
		opts.FPS = cfg.Video.FPS
	}
	if cfg.Video.FramesPerClip > 0 {
		opts.FramesPerClip = cfg.Video.FramesPerClip
	}
	if cfg.Video.Stride > 0 {
		opts.Stride = cfg.Video.Stride
	}
	if cfg.Video.AudioRate > 0 {
		opts.AudioRate = cfg.Video.AudioRate
	}
	if cfg.Video.PowerUpRate > 0 {
		opts.PowerUpRate = cfg.Video.PowerUpRate
	}

	store, runID, err := openCatalog(dir)
	if err != nil {
		fatal("opening catalog", err)
	}
	defer store.Close()

	opts.OnClip = func(levelNum int, name string, startFrame, endFrame int) error {
		_, err := store.RecordClip(catalog.ClipEntry{
			RunID:      runID,
			LevelNum:   levelNum,
			Name:       name,
			StartFrame: startFrame,
			EndFrame:   endFrame,
		})
		return err
	}

	gen, err := video.NewGenerator(opts, logger)
	if err != nil {
		fatal("preparing generator", err)
	}

	total, err := gen.Generate(cmd.Context())
	if err != nil {
		fatal("generating videos", err)
	}
	fmt.Printf("Generated %d videos\n", total)
}
