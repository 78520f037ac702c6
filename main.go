package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	workbook   string
)

var rootCmd = &cobra.Command{
	Use:   "contact-radar",
	Short: "Nearest-contact ranking and duplicate detection for a contact directory",
	Long: `contact-radar loads a contact directory from an Excel workbook and answers two
questions about it: which contacts are nearest to a position, and whether an
incoming contact already exists (same phone digits, or a similar name).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&workbook, "workbook", "w", "", "directory workbook (overrides config)")

	rootCmd.AddCommand(serveCmd, nearestCmd, dedupeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
