package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ymonitor/ymonitor/internal/alertengine"
	"github.com/ymonitor/ymonitor/internal/api"
	"github.com/ymonitor/ymonitor/internal/audit"
	"github.com/ymonitor/ymonitor/internal/config"
	"github.com/ymonitor/ymonitor/internal/discovery"
	"github.com/ymonitor/ymonitor/internal/health"
	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/metriccache"
	"github.com/ymonitor/ymonitor/internal/notify"
	"github.com/ymonitor/ymonitor/internal/poller"
	"github.com/ymonitor/ymonitor/internal/scheduler"
	"github.com/ymonitor/ymonitor/internal/snmp"
	snmpcache "github.com/ymonitor/ymonitor/internal/snmp/cache"
	"github.com/ymonitor/ymonitor/internal/store/postgres"
	"github.com/ymonitor/ymonitor/internal/store/timeseries"
	"github.com/ymonitor/ymonitor/internal/websocket"
	"github.com/ymonitor/ymonitor/internal/workerpool"
)

// app bundles every subsystem run wires together, so run/discover/
// validate-config can share one construction path instead of each
// re-deriving it.
type app struct {
	cfg *config.Config

	health *health.Monitor
	audit  *audit.Logger

	transport *snmp.Transport
	cache     *snmpcache.Cache
	store     *postgres.Store

	orchestrator *discovery.Orchestrator
	hub          *websocket.Hub

	scheduler  *scheduler.Scheduler
	evaluator  *alertengine.Evaluator
	dispatcher *notify.Dispatcher

	interfacePoller *poller.InterfacePoller
	sensorPoller    *poller.SensorPoller

	events   chan alertengine.AlertEvent
	triggers chan poller.Trigger

	service *api.Service
}

// buildApp wires every component SPEC_FULL.md names together: the SNMP
// transport (+ optional Redis cache), the Postgres stores, the
// time-series writer and in-memory latest-sample cache, the discovery
// orchestrator (+ websocket progress hub), the poller/evaluator cron
// jobs on a shared scheduler, the notification dispatcher, and the
// operational surface Service composing all of it. Callers that only
// need a subset (e.g. the discover subcommand) can still call this and
// ignore what they don't use — every component here is cheap to
// construct and nothing blocks until Start is called.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logging.L("main")

	a := &app{
		cfg:      cfg,
		health:   health.NewMonitor(),
		events:   make(chan alertengine.AlertEvent, 256),
		triggers: make(chan poller.Trigger, 256),
	}

	auditLogger, err := audit.NewLogger(config.GetDataDir(), cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	if err != nil {
		return nil, fmt.Errorf("init audit logger: %w", err)
	}
	a.audit = auditLogger

	a.transport = snmp.NewTransport()
	if cfg.RedisAddr != "" {
		a.cache = snmpcache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Duration(cfg.SNMPCacheTTLMS)*time.Second)
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		a.health.Update("postgres", health.Unhealthy, err.Error())
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	a.health.Update("postgres", health.Healthy, "")
	a.store = store

	seriesWriter := timeseries.New(cfg.TimeseriesURL)
	latestCache := metriccache.New()
	metrics := &metricsFanout{series: seriesWriter, latest: latestCache}

	// One pool sized off worker_pool_size/worker_queue_size, shared by the
	// discovery Entity-MIB walk and both pollers (config.go's comment on
	// WorkerPoolSize), rather than a pool per consumer.
	pool := workerPool(cfg)

	a.hub = websocket.NewHub()
	a.orchestrator = discovery.NewOrchestrator(
		a.transport,
		store.Devices,
		[]discovery.Module{
			discovery.CoreModule{Transport: a.transport},
			discovery.EntityModule{Transport: a.transport, Pool: pool},
			discovery.PortsModule{Transport: a.transport, Store: store.Ports},
			discovery.SensorsModule{Transport: a.transport, Store: store.Sensors},
			discovery.TopologyModule{Transport: a.transport, Store: store.Topology},
		},
		defaultOSTemplates(),
	)
	a.orchestrator.Cache = a.cache
	a.orchestrator.Progress = a.hub

	a.dispatcher = notify.NewDispatcher(store.Transports, store.Notifications, store.Alerts)
	a.evaluator = alertengine.NewEvaluator(store.Rules, store.Devices, latestCache, store.Alerts, a.events)

	a.interfacePoller = &poller.InterfacePoller{
		Transport:      a.transport,
		Devices:        store.Devices,
		Ports:          store.Ports,
		Status:         store.Devices,
		Metrics:        metrics,
		Triggers:       a.triggers,
		ErrorThreshold: cfg.InterfaceErrorRateThreshold,
		HistorySize:    cfg.InterfaceHistorySize,
		Pool:           pool,
	}
	a.sensorPoller = &poller.SensorPoller{
		Transport:   a.transport,
		Devices:     store.Devices,
		Sensors:     store.Sensors,
		Status:      store.Devices,
		Metrics:     metrics,
		Triggers:    a.triggers,
		HistorySize: cfg.SensorHistorySize,
		Pool:        pool,
	}

	a.scheduler = scheduler.New(cfg.SchedulerMemPressurePercent)

	a.service = &api.Service{
		Rules:        store.Rules,
		Alerts:       store.Alerts,
		Transports:   store.Transports,
		Devices:      store.Devices,
		Metrics:      latestCache,
		Dispatcher:   a.dispatcher,
		Orchestrator: a.orchestrator,
		Audit:        a.audit,
	}

	log.Info("application wired", "postgres", dsnSummary(cfg.PostgresDSN), "timeseries", cfg.TimeseriesURL != "", "snmp_cache", a.cache != nil)
	return a, nil
}

func workerPool(cfg *config.Config) *workerpool.Pool {
	size, queue := cfg.WorkerPoolSize, cfg.WorkerQueueSize
	if size <= 0 {
		size = 10
	}
	if queue <= 0 {
		queue = 100
	}
	return workerpool.New(size, queue)
}

func dsnSummary(dsn string) bool {
	return dsn != ""
}

// close releases resources buildApp acquired that aren't part of the
// cron/server lifecycle Start/Stop manage.
func (a *app) close() {
	a.transport.Close()
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.audit != nil {
		_ = a.audit.Close()
	}
	a.orchestrator.Close()
}
