package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hotmob/notebooklm-slide-refiner/cmd/slide-refiner/ui"
	"github.com/hotmob/notebooklm-slide-refiner/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest <manifest.jsonl>",
	Short: "Summarize a run manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := manifest.Read(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("manifest is empty")
			return nil
		}

		// The manifest is append-only across runs. The latest entry for a
		// page is its effective state.
		latest := make(map[int]manifest.Entry)
		for _, e := range entries {
			latest[e.PageIndex] = e
		}

		counts := make(map[string]int)
		var failed []int
		for idx, e := range latest {
			counts[e.Status]++
			if e.Status == "failed" {
				failed = append(failed, idx+1)
			}
		}
		sort.Ints(failed)

		statuses := make([]string, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)

		fmt.Printf("%d entries, %d pages\n", len(entries), len(latest))
		for _, s := range statuses {
			fmt.Printf("  %-16s %d\n", s, counts[s])
		}
		if len(failed) > 0 {
			ui.Fail("failed pages: %v", failed)
		} else {
			ui.Success("no failed pages")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
