// Package commands implements the slide-refiner CLI.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hotmob/notebooklm-slide-refiner/internal/config"
)

var (
	cfgFile string
	verbose bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "slide-refiner",
	Short: "Convert a document into refined slide-deck images",
	Long: `slide-refiner renders each page of a document into a fixed-resolution
image, optionally enhances the images through a generative image-editing
service, and assembles the results into a slide deck. Every page outcome is
appended to a durable manifest so interrupted runs resume where they left off.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Env first so the config loader sees .env values.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
