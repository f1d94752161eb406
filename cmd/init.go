package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dailybrief/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize dailybrief configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the brief source, rendering and server, and writes a .dailybrief.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
