package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ymonitor/ymonitor/internal/config"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Validate the configuration file without starting the process",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		result := cfg.ValidateTiered()
		for _, w := range result.Warnings {
			fmt.Printf("warning: %v\n", w)
		}
		for _, f := range result.Fatals {
			fmt.Printf("fatal: %v\n", f)
		}
		if result.HasFatals() {
			return fmt.Errorf("config has %d fatal error(s)", len(result.Fatals))
		}
		fmt.Println("config OK")
		return nil
	},
}
