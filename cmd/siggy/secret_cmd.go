package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siggy-land/siggy/conf"
)

var secretCmd = cobra.Command{
	Use:   "secret",
	Short: "Show where the auth secret comes from",
	Long:  "Resolve the cookie signing secret the way serve does and print its source and fingerprint. The secret itself is never printed.",
	Run: func(cmd *cobra.Command, args []string) {
		execWithConfig(cmd, showSecret)
	},
}

func showSecret(cmd *cobra.Command, config *conf.GlobalConfiguration) {
	key := resolveSecret(config)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "source:      %s\n", key.Source())
	fmt.Fprintf(out, "fingerprint: %s\n", key.Fingerprint())
	fmt.Fprintf(out, "insecure:    %t\n", key.Insecure())
}
