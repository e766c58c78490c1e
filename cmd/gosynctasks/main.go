package main

import (
	"log"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"gosynctasks/internal/config"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "gosynctasks",
		Short: "Two-way task synchronization engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configPath != "" {
				config.SetCustomConfigPath(configPath)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file or directory (defaults to the user config dir)")

	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newCredentialsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
