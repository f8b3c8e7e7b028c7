package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the bills currently published on the listing page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		bills := a.discovery.Discover(cmd.Context())
		out := cmd.OutOrStdout()

		if jsonOutput {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(bills)
		}

		if len(bills) == 0 {
			fmt.Fprintln(out, "No bills found. The site structure may have changed or the listing is unavailable.")
			return nil
		}
		for i, bill := range bills {
			billUrl := bill.URL()
			fmt.Fprintf(out, "%3d. %s\n     %s\n", i+1, bill.Title(), billUrl.String())
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the catalog as JSON")
	rootCmd.AddCommand(discoverCmd)
}
