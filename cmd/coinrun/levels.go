package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels <restore_id>",
	Short: "List the converted levels of a run",
	Long: `Shows every level recorded in the catalog for the given run, with its
seed, frame count and whether it passes the clip filter.

Example:
  coinrun levels paper_500`,
	Args: cobra.ExactArgs(1),
	Run:  runLevels,
}

func runLevels(cmd *cobra.Command, args []string) {
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

	levels, err := store.Levels(runID)
	if err != nil {
		fatal("querying levels", err)
	}

	if len(levels) == 0 {
		fmt.Println("No levels recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'coinrun convert %s' to convert this run first.\n", args[0])
		os.Exit(0)
	}

	fmt.Printf("Levels - %s\n", args[0])
	fmt.Println()

	// Print header
	fmt.Printf("  %-6s  %-12s  %-8s  %s\n", "Level", "Seed", "Frames", "Interesting")
	fmt.Printf("  %-6s  %-12s  %-8s  %s\n", "-----", "----", "------", "-----------")

	interesting := 0
	for _, e := range levels {
		mark := ""
		if e.Interesting {
			mark = "yes"
			interesting++
		}
		fmt.Printf("  %-6d  %-12d  %-8d  %s\n", e.LevelNum, e.LevelSeed, e.NumFrames, mark)
	}

	fmt.Println()
	fmt.Printf("%d of %d levels pass the clip filter.\n", interesting, len(levels))
}
