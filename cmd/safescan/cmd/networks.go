package cmd

import (
	"fmt"
	"io"

	"safescan/pkg/networks"

	"github.com/spf13/cobra"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List supported networks and token contracts",
	Run: func(cmd *cobra.Command, args []string) {
		printNetworks(cmd.OutOrStdout())
	},
}

func printNetworks(w io.Writer) {
	for _, n := range networks.All() {
		fmt.Fprintf(w, "%-10s chain %s\n", n.Name, n.ChainIDHex())
		for _, t := range n.Tokens {
			fmt.Fprintf(w, "  %-5s %s\n", t.Symbol, t.Address.Hex())
		}
	}
}

func init() {
	rootCmd.AddCommand(networksCmd)
}
