package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ymonitor/ymonitor/internal/alertengine"
	"github.com/ymonitor/ymonitor/internal/audit"
	"github.com/ymonitor/ymonitor/internal/config"
	"github.com/ymonitor/ymonitor/internal/health"
	"github.com/ymonitor/ymonitor/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run Y Monitor",
	Long:  "Start Y Monitor: SNMP polling, discovery, alert evaluation, and notification dispatch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		var logOutput = os.Stdout
		if cfg.LogFile != "" {
			rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer rw.Close()
			logging.Init(cfg.LogFormat, cfg.LogLevel, logging.TeeWriter(logOutput, rw))
		} else {
			logging.Init(cfg.LogFormat, cfg.LogLevel, logOutput)
		}

		log := logging.L("main")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return fmt.Errorf("build application: %w", err)
		}
		defer a.close()

		a.audit.Log(audit.EventProcessStart, "", nil)
		defer a.audit.Log(audit.EventProcessStop, "", nil)

		if err := registerJobs(a); err != nil {
			a.health.Update("scheduler", health.Unhealthy, err.Error())
			return fmt.Errorf("register scheduled jobs: %w", err)
		}
		a.scheduler.Start()
		a.health.Update("scheduler", health.Healthy, "")
		defer a.scheduler.Stop(context.Background())

		go a.evaluator.Run(ctx, 1)

		triggerSink := &alertengine.TriggerSink{Alerts: a.store.Alerts, Events: a.events}
		go triggerSink.Run(ctx, a.triggers)

		go a.dispatcher.Run(ctx, a.events)

		mux := http.NewServeMux()
		mux.Handle("/ws/discovery", a.hub)
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, a.health.Summary())
		})
		server := &http.Server{Addr: cfg.DiscoveryProgressWSAddr, Handler: mux}
		go func() {
			log.Info("progress/health server listening", "addr", cfg.DiscoveryProgressWSAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("progress/health server failed", "error", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
		cancel()

		return nil
	},
}

func registerJobs(a *app) error {
	cfg := a.cfg
	if err := a.scheduler.Register("interface_poll", everySeconds(cfg.InterfacePollIntervalSeconds), cfg.InterfaceBatchSize, a.interfacePoller.Run); err != nil {
		return err
	}
	if err := a.scheduler.Register("sensor_poll", everySeconds(cfg.SensorPollIntervalSeconds), cfg.SensorBatchSize, a.sensorPoller.Run); err != nil {
		return err
	}
	if err := a.scheduler.Register("alert_eval", everySeconds(cfg.AlertEvalIntervalSeconds), 1, a.evaluator.Run); err != nil {
		return err
	}
	return nil
}

func everySeconds(n int) string {
	if n <= 0 {
		n = 60
	}
	return fmt.Sprintf("@every %ds", n)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.L("main").Error("failed to encode response", "error", err)
	}
}
