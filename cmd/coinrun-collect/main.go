// coinrun-collect drives the native CoinRun simulator to record replay
// data: the engine writes monitor csv logs while this tool saves the
// per-frame audio trigger maps. The rollout policy is uniform random
// actions, which is enough to exercise every sound trigger.
//
// The binary links against the native coinrun_cpp shared library and is
// built separately from the main toolkit for that reason.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coinrun-replay/internal/config"
	"github.com/vovakirdan/coinrun-replay/internal/engine"
)

var (
	flagDataRoot  string
	flagRunID     string
	flagConfig    string
	flagSeed      int
	flagNumLevels int

	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coinrun-collect",
	Short: "Collect CoinRun replay data from the native simulator",
	Long: `Runs the native CoinRun simulator with a random policy and records
replay data for post-processing: the engine writes monitor csv logs and
this tool writes the audio trigger map alongside them.

Example:
  coinrun-collect --run-id paper_500 --levels 500`,
	Run: runCollect,
}

func init() {
	_ = godotenv.Load()

	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	rootCmd.Flags().StringVar(&flagDataRoot, "data-root", "video_data", "Root folder for collection runs")
	rootCmd.Flags().StringVar(&flagRunID, "run-id", "", "Identifier of this collection run (required)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Pipeline config file")
	rootCmd.Flags().IntVar(&flagSeed, "seed", -1, "Level generation seed (-1 = random)")
	rootCmd.Flags().IntVar(&flagNumLevels, "levels", 0, "Number of levels to collect (0 = config default)")
	rootCmd.MarkFlagRequired("run-id")
}

func runCollect(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fatal("loading config", err)
	}
	numLevels := cfg.Collect.NumLevels
	if flagNumLevels > 0 {
		numLevels = flagNumLevels
	}

	runDir := filepath.Join(flagDataRoot, flagRunID)
	csvDir := filepath.Join(runDir, "csv")
	audioDir := filepath.Join(runDir, "audio_semantic_map")
	for _, dir := range []string{csvDir, audioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal("creating run directory", err)
		}
	}

	opts := engine.DefaultInitOptions(csvDir)
	opts.NumLevels = numLevels
	if flagSeed >= 0 {
		opts.SetSeed = flagSeed
		opts.RandSeed = flagSeed
	}
	if err := engine.Init(opts); err != nil {
		fatal("initializing engine", err)
	}
	defer engine.Shutdown()

	env, err := engine.NewVecEnv(1, 0, true, 5.5)
	if err != nil {
		fatal("creating environment", err)
	}
	defer env.Close()

	if err := collect(env, audioDir, numLevels, cfg.Collect.MaxSteps); err != nil {
		fatal("collecting", err)
	}
}

// collect steps the environment with random actions until numLevels levels
// finished, writing one audio map row per frame and a level header at each
// level boundary.
func collect(env *engine.VecEnv, audioDir string, numLevels, maxSteps int) error {
	f, err := os.Create(filepath.Join(audioDir, "audio_map.txt"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	level := 0
	if err := writeLevelHeader(w, level); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(2))
	actions := make([]int32, env.NumEnvs)
	var levelReward float32

	for step := 0; level < numLevels; step++ {
		if maxSteps > 0 && step >= maxSteps*numLevels {
			logger.Warn("step budget exhausted", "levels", level, "steps", step)
			break
		}
		for i := range actions {
			actions[i] = int32(rng.Intn(env.Consts.NumActions))
		}
		res, err := env.Step(actions)
		if err != nil {
			return err
		}

		if res.NewLevels[0] {
			logger.Info("level finished", "level", level, "reward", levelReward)
			levelReward = 0
			level++
			if err := writeLevelHeader(w, level); err != nil {
				return err
			}
		}
		if err := writeAudioRow(w, res.AudioSegMap[:env.Consts.AudioMapSize]); err != nil {
			return err
		}
		levelReward += res.Rewards[0]
	}

	return w.Flush()
}

func writeLevelHeader(w *bufio.Writer, level int) error {
	_, err := fmt.Fprintf(w, "level_%04d\n", level)
	return err
}

func writeAudioRow(w *bufio.Writer, row []byte) error {
	for i, v := range row {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(strconv.Itoa(int(v))); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func fatal(msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
