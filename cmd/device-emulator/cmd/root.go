package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "device-emulator",
	Short: "Hardware wallet device core emulator",
	Long: `Runs the transaction-signing device core against a TCP host link.
The companion app connects to the link and drives the signing protocol;
confirmations render on this terminal in place of the device screen.`,
}

// Execute adds all child commands to the root command and sets flags
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
