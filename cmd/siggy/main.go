package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/siggy-land/siggy/conf"
)

var configFile = ""

var rootCmd = cobra.Command{
	Use:   "siggy",
	Short: "Wallet sign-in and profile API for Siggy Land",
	Run: func(cmd *cobra.Command, args []string) {
		execWithConfig(cmd, serve)
	},
}

// RootCommand will setup and return the root command
func RootCommand() *cobra.Command {
	rootCmd.AddCommand(&serveCmd, &migrateCmd, &secretCmd, walletCmd())
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "the env file to load")

	return &rootCmd
}

func execWithConfig(cmd *cobra.Command, fn func(cmd *cobra.Command, config *conf.GlobalConfiguration)) {
	config, err := conf.LoadGlobal(configFile)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %+v", err)
	}

	fn(cmd, config)
}

func main() {
	if err := RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
