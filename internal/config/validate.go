package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/ymonitor/ymonitor/internal/logging"
)

var log = logging.L("config")

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

var knownTransports = map[string]bool{
	"email":    true,
	"webhook":  true,
	"slack":    true,
	"telegram": true,
	"teams":    true,
	"sms":      true,
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// ValidationResult is the outcome of a tiered config validation pass:
// Fatals block startup, Warnings are logged and the offending value is
// clamped to a safe default in place.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

// HasFatals reports whether any fatal validation error was recorded.
func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// AllErrors returns fatals followed by warnings, for callers that just
// want a flat list.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

// ValidateTiered accumulates every validation problem, splitting them into
// fatal errors (malformed identifiers/credentials that must block startup)
// and warnings (out-of-range values that are auto-clamped to a safe
// default and logged, never blocking startup). Dangerous zero-values that
// would cause panics downstream (e.g. division by a zero interval) are
// always clamped.
func (c *Config) ValidateTiered() ValidationResult {
	var result ValidationResult

	if c.PostgresDSN != "" {
		if _, err := url.Parse(c.PostgresDSN); err != nil {
			result.Fatals = append(result.Fatals, fmt.Errorf("postgres_dsn is not a valid URL: %w", err))
		}
	}

	if c.TimeseriesURL != "" {
		u, err := url.Parse(c.TimeseriesURL)
		if err != nil {
			result.Fatals = append(result.Fatals, fmt.Errorf("timeseries_url %q is not a valid URL: %w", c.TimeseriesURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			result.Fatals = append(result.Fatals, fmt.Errorf("timeseries_url scheme must be http or https, got %q", u.Scheme))
		}
	}

	if c.RedisPassword != "" {
		for _, r := range c.RedisPassword {
			if unicode.IsControl(r) {
				result.Fatals = append(result.Fatals, fmt.Errorf("redis_password contains control characters"))
				break
			}
		}
	}

	switch strings.ToLower(c.DefaultSNMPVersion) {
	case "", "v1", "v2c", "v3":
	default:
		result.Fatals = append(result.Fatals, fmt.Errorf("default_snmp_version %q is not one of v1, v2c, v3", c.DefaultSNMPVersion))
	}

	clampInterval := func(name string, v *int, min, max int) {
		if *v < min {
			result.Warnings = append(result.Warnings, fmt.Errorf("%s %d is below minimum %d, clamping", name, *v, min))
			*v = min
		} else if *v > max {
			result.Warnings = append(result.Warnings, fmt.Errorf("%s %d exceeds maximum %d, clamping", name, *v, max))
			*v = max
		}
	}

	clampInterval("interface_poll_interval_seconds", &c.InterfacePollIntervalSeconds, 30, 3600)
	clampInterval("sensor_poll_interval_seconds", &c.SensorPollIntervalSeconds, 30, 3600)
	clampInterval("device_status_poll_interval_seconds", &c.DeviceStatusPollIntervalSeconds, 10, 600)
	clampInterval("alert_eval_interval_seconds", &c.AlertEvalIntervalSeconds, 10, 600)
	clampInterval("interface_batch_size", &c.InterfaceBatchSize, 1, 500)
	clampInterval("sensor_batch_size", &c.SensorBatchSize, 1, 500)
	clampInterval("interface_history_size", &c.InterfaceHistorySize, 10, 10000)
	clampInterval("sensor_history_size", &c.SensorHistorySize, 10, 10000)
	clampInterval("worker_pool_size", &c.WorkerPoolSize, 1, 200)
	clampInterval("worker_queue_size", &c.WorkerQueueSize, 1, 10000)
	clampInterval("snmp_cache_ttl_seconds", &c.SNMPCacheTTLMS, 0, 86400)
	clampInterval("default_snmp_timeout_ms", &c.DefaultSNMPTimeoutMS, 1000, 60000)
	clampInterval("default_snmp_retries", &c.DefaultSNMPRetries, 0, 10)

	if c.SchedulerMemPressurePercent <= 0 || c.SchedulerMemPressurePercent > 100 {
		result.Warnings = append(result.Warnings, fmt.Errorf("scheduler_mem_pressure_percent %v out of (0,100], clamping to 85", c.SchedulerMemPressurePercent))
		c.SchedulerMemPressurePercent = 85
	}

	for _, name := range c.EnabledTransports {
		if !knownTransports[strings.ToLower(name)] {
			result.Warnings = append(result.Warnings, fmt.Errorf("unknown transport %q", name))
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	for _, err := range result.Fatals {
		log.Error("config validation fatal", "error", err)
	}
	for _, err := range result.Warnings {
		log.Warn("config validation", "error", err)
	}

	return result
}
