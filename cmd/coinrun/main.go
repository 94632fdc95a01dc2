// coinrun is the offline post-processing toolkit for CoinRun replays.
//
// Usage:
//
//	coinrun convert <restore_id>   - Convert monitor csv logs to json metadata
//	coinrun render <restore_id>    - Render semantic maps or original frames
//	coinrun video <restore_id>     - Assemble clips with a mixed soundtrack
//	coinrun levels <restore_id>    - List converted levels of a run
//	coinrun stats <restore_id>     - Show aggregate statistics of a run
//
// Global flags:
//
//	--data-root <dir>   - Root folder of collection runs (default: video_data)
//	--db <path>         - Catalog database path (default: ~/.coinrun-replay/catalog.db)
//	--config <path>     - Pipeline config file
//	--log-level <lvl>   - Log level: debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coinrun-replay/internal/catalog"
	"github.com/vovakirdan/coinrun-replay/internal/config"
)

var (
	// Global flags
	flagDataRoot string
	flagDBPath   string
	flagConfig   string
	flagLogLevel string

	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coinrun",
	Short: "CoinRun replay post-processing toolkit",
	Long: `coinrun converts CoinRun monitor logs into replay metadata, renders
replay frames as semantic maps or original-color images, and assembles
audio-mixed video clips from them.

A collection run lives in one directory under the data root, typically
video_data/<restore_id>, holding the engine's csv logs and audio maps.

Examples:
  coinrun convert paper_500
  coinrun render paper_500 --level 1 --frame 11
  coinrun render paper_500 --level 1 --save-as-video --original
  coinrun video paper_500
  coinrun stats paper_500`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			level = log.InfoLevel
		}
		logger.SetLevel(level)
	},
}

func init() {
	// Environment overrides from a local .env, if present
	_ = godotenv.Load()

	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	rootCmd.PersistentFlags().StringVar(&flagDataRoot, "data-root", envOr("COINRUN_DATA_ROOT", "video_data"), "Root folder of collection runs")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.coinrun-replay/catalog.db", "Path to catalog database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Pipeline config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(statsCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadPipelineConfig resolves the pipeline config, with the data root flag
// taking precedence over the file.
func loadPipelineConfig() (config.PipelineConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDataRoot != "" {
		cfg.DataRoot = flagDataRoot
	}
	return cfg, nil
}

// runDir returns the directory of one collection run.
func runDir(cfg config.PipelineConfig, restoreID string) string {
	return filepath.Join(cfg.DataRoot, restoreID)
}

// openCatalog opens the catalog database, finding or registering the run
// for the given data directory.
func openCatalog(dataDir string) (*catalog.Store, string, error) {
	store, err := catalog.Open(flagDBPath)
	if err != nil {
		return nil, "", err
	}
	run, err := store.RunByDataDir(dataDir)
	if err != nil {
		store.Close()
		return nil, "", err
	}
	if run != nil {
		return store, run.ID, nil
	}
	id, err := store.CreateRun(dataDir)
	if err != nil {
		store.Close()
		return nil, "", err
	}
	return store, id, nil
}

func fatal(msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
