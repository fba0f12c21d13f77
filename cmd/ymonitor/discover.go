package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ymonitor/ymonitor/internal/config"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <device-id>",
	Short: "Run discovery against one device",
	Long:  "Start a full discovery session against a device and print the result once it completes (start_discovery/get_session).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID := args[0]
		modules, _ := cmd.Flags().GetStringSlice("modules")

		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx := context.Background()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return fmt.Errorf("build application: %w", err)
		}
		defer a.close()

		session, err := a.service.StartDiscovery(ctx, deviceID, modules)
		if err != nil {
			return fmt.Errorf("start discovery: %w", err)
		}

		for {
			session, err = a.service.GetSession(session.ID)
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}
			if session.EndedAt != nil {
				break
			}
			time.Sleep(250 * time.Millisecond)
		}

		fmt.Printf("session %s: %s (%d%%)\n", session.ID, session.Status, session.Progress)
		for _, r := range session.Results {
			fmt.Printf("  %-10s success=%v duration=%dms\n", r.Module, r.Success, r.DurationMS)
		}
		for _, e := range session.Errors {
			fmt.Printf("  error: %v\n", e)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringSlice("modules", nil, "module subset to run (default: all)")
}
