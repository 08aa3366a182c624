package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	settingsFile string
	driversDir   string
	debug        bool
)

var rootCmd = &cobra.Command{
	Use:   "strumboli",
	Short: "Play a drawing tablet as a MIDI strummed instrument",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "settings", "s", "settings.json", "path to settings JSON file")
	rootCmd.PersistentFlags().StringVar(&driversDir, "drivers", "drivers", "directory of tablet driver profiles")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})))
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
