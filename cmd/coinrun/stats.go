package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statsTitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

var statsCmd = &cobra.Command{
	Use:   "stats <restore_id>",
	Short: "Show aggregate statistics of a run",
	Long: `Summarizes the catalog records of one run: converted levels, the share
passing the clip filter, total frame count and assembled clips.

Example:
  coinrun stats paper_500`,
	Args: cobra.ExactArgs(1),
	Run:  runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := loadPipelineConfig()
	if err != nil {
		fatal("loading config", err)
	}
	dir := runDir(cfg, args[0])

	store, runID, err := openCatalog(dir)
	if err != nil {
		fatal("opening catalog", err)
	}
	defer store.Close()

	stats, err := store.Stats(runID)
	if err != nil {
		fatal("querying stats", err)
	}

	fmt.Println(statsTitleStyle.Render(fmt.Sprintf("Run %s", args[0])))
	fmt.Println()
	fmt.Printf("  %-20s %d\n", "Levels converted:", stats.LevelCount)
	fmt.Printf("  %-20s %d\n", "Interesting levels:", stats.InterestingCount)
	fmt.Printf("  %-20s %d\n", "Total frames:", stats.TotalFrames)
	fmt.Printf("  %-20s %.1f\n", "Avg frames/level:", stats.AvgFrames)
	fmt.Printf("  %-20s %d\n", "Clips assembled:", stats.ClipCount)
	if !stats.LastProcessed.IsZero() {
		fmt.Printf("  %-20s %s\n", "Last processed:", stats.LastProcessed.Format("2006-01-02 15:04"))
	}
}
