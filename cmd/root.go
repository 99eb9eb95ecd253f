package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photovault",
	Short: "Processing toolkit for a personal photo vault",
	Long: `PhotoVault processes a household photo archive: it detects and
recognizes faces, cuts individual photos out of scanned album pages,
restores old prints, and composes montages. Results are written to the
configured storage backend (local disk or S3).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
