package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/purelink-labs/purelink/cli"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "purelink",
	Short: "Purelink tool discovery CLI",
	Long:  "Purelink — identify software tools from free text and discover verified ways to get data out of them.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ./purelink.yaml, then ~/.purelink/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose/debug logging")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("purelink version %s\n", version))

	rootCmd.AddCommand(cli.NewCaptureCmd())
	rootCmd.AddCommand(cli.NewDiscoverCmd())
	rootCmd.AddCommand(cli.NewLinkCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewRefreshCmd())
}
