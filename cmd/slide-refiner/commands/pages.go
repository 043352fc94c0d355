package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hotmob/notebooklm-slide-refiner/internal/pages"
	"github.com/hotmob/notebooklm-slide-refiner/internal/render"
)

var pagesFlags struct {
	input     string
	selection string
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Resolve a page selection against a document without rendering",
	RunE: func(cmd *cobra.Command, args []string) error {
		renderer, err := render.NewFitzRenderer(pagesFlags.input)
		if err != nil {
			return err
		}
		defer renderer.Close()

		total := renderer.PageCount()
		selected, err := pages.Parse(pagesFlags.selection, total)
		if err != nil {
			return err
		}

		fmt.Printf("document has %d pages\n", total)
		if len(selected) == 0 {
			fmt.Println("selection matches no pages")
			return nil
		}
		fmt.Printf("selected %d page(s):", len(selected))
		for _, idx := range selected {
			fmt.Printf(" %d", idx+1)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	pagesCmd.Flags().StringVar(&pagesFlags.input, "input", "", "input PDF path")
	pagesCmd.Flags().StringVar(&pagesFlags.selection, "pages", "", "page selection like 1-3,5,7-9 (empty selects all)")
	cobra.CheckErr(pagesCmd.MarkFlagRequired("input"))

	rootCmd.AddCommand(pagesCmd)
}
