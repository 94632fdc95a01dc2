package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/coinrun-replay/internal/catalog"
	"github.com/vovakirdan/coinrun-replay/internal/monitor"
	"github.com/vovakirdan/coinrun-replay/internal/replay"
	"github.com/vovakirdan/coinrun-replay/internal/video"
)

var (
	flagConvertInput  string
	flagConvertOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert <restore_id>",
	Short: "Convert a run's monitor csv log to json metadata",
	Long: `Parses the monitor.csv log the engine wrote during data collection and
writes one json file per level into the run's json_metadata folder.

Examples:
  coinrun convert paper_500
  coinrun convert paper_500 --input video_data/paper_500/csv/000.monitor.csv`,
	Args: cobra.ExactArgs(1),
	Run:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&flagConvertInput, "input", "", "Path to the monitor.csv file (default: <run>/csv/000.monitor.csv)")
	convertCmd.Flags().StringVar(&flagConvertOutput, "output-folder", "json_metadata", "Output folder name inside the run directory")
}

func runConvert(cmd *cobra.Command, args []string) {
	cfg, err := loadPipelineConfig()
	if err != nil {
		fatal("loading config", err)
	}
	dir := runDir(cfg, args[0])

	input := flagConvertInput
	if input == "" {
		input = filepath.Join(dir, "csv", "000.monitor.csv")
	}
	outputDir := filepath.Join(dir, flagConvertOutput)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fatal("creating output folder", err)
	}

	store, runID, err := openCatalog(dir)
	if err != nil {
		fatal("opening catalog", err)
	}
	defer store.Close()

	// Audio maps exist once collection ran with sound triggers enabled;
	// without them every level is flagged uninteresting.
	audioMaps, err := video.ParseAudioMap(filepath.Join(dir, "audio_semantic_map", "audio_map.txt"))
	if err != nil {
		logger.Warn("no audio map for run, skipping interest flags", "err", err)
		audioMaps = nil
	}

	logger.Info("converting monitor log", "input", input, "output", outputDir)

	levels, frames, err := monitor.ParseFile(input, func(g *replay.Game) error {
		path := filepath.Join(outputDir, replay.LevelFileName(g.GameID))
		if err := g.SaveJSON(path, -1, -1); err != nil {
			return err
		}
		if err := store.RecordLevel(catalog.LevelEntry{
			RunID:       runID,
			LevelNum:    g.GameID,
			LevelSeed:   g.LevelSeed,
			NumFrames:   len(g.Frames),
			Interesting: video.Interesting(audioMaps[g.GameID], len(g.Frames), cfg.Video.FramesPerClip),
		}); err != nil {
			return err
		}
		logger.Debug("level converted", "level", g.GameID, "frames", len(g.Frames))
		return nil
	})
	if err != nil {
		fatal("converting", err)
	}

	logger.Info("conversion finished", "levels", levels, "frames", frames)
	fmt.Printf("Converted %d levels (%d frames) to %s\n", levels, frames, outputDir)
}
