package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "safescan",
	Short: "Wallet scanner panel",
	Long: `SafeScan connects to your wallet's own JSON-RPC endpoint, shows a scanner
panel and submits ERC-20 approvals only for a spender and amount you type
in and confirm.`,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
