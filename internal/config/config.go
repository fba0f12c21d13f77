package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config is the top-level Y Monitor process configuration, unmarshaled
// from YAML (located via --config or YMONITOR_CONFIG) with
// YMONITOR_-prefixed environment variable overrides.
type Config struct {
	// Persistence
	PostgresDSN    string `mapstructure:"postgres_dsn"`
	TimeseriesURL  string `mapstructure:"timeseries_url"`
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db"`
	SNMPCacheTTLMS int    `mapstructure:"snmp_cache_ttl_seconds"`

	// Default SNMP credentials applied to devices that don't override them
	DefaultSNMPVersion    string `mapstructure:"default_snmp_version"`
	DefaultSNMPCommunity  string `mapstructure:"default_snmp_community"`
	DefaultSNMPTimeoutMS  int    `mapstructure:"default_snmp_timeout_ms"`
	DefaultSNMPRetries    int    `mapstructure:"default_snmp_retries"`
	DefaultSNMPMaxRepeats int    `mapstructure:"default_snmp_max_repetitions"`

	// Scheduler cadences (seconds)
	InterfacePollIntervalSeconds    int `mapstructure:"interface_poll_interval_seconds"`
	SensorPollIntervalSeconds       int `mapstructure:"sensor_poll_interval_seconds"`
	DeviceStatusPollIntervalSeconds int `mapstructure:"device_status_poll_interval_seconds"`
	AlertEvalIntervalSeconds        int `mapstructure:"alert_eval_interval_seconds"`

	// Batch sizes
	InterfaceBatchSize int `mapstructure:"interface_batch_size"`
	SensorBatchSize    int `mapstructure:"sensor_batch_size"`

	// In-memory history ring sizes
	InterfaceHistorySize int `mapstructure:"interface_history_size"`
	SensorHistorySize    int `mapstructure:"sensor_history_size"`

	// Scheduler admission control
	SchedulerMemPressurePercent float64 `mapstructure:"scheduler_mem_pressure_percent"`

	// Alert thresholds
	InterfaceErrorRateThreshold float64 `mapstructure:"interface_error_rate_threshold"`

	// Notification transport bootstrap (transport types enabled at startup;
	// concrete transport rows still live in the relational store)
	EnabledTransports []string `mapstructure:"enabled_transports"`

	// Logging configuration
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	// Worker pool sizing, shared by pollers and the discovery Entity-MIB walk
	WorkerPoolSize  int `mapstructure:"worker_pool_size"`
	WorkerQueueSize int `mapstructure:"worker_queue_size"`

	// Discovery
	DiscoverySessionRetentionHours int `mapstructure:"discovery_session_retention_hours"`
	DiscoveryProgressWSAddr        string `mapstructure:"discovery_progress_ws_addr"`
}

func Default() *Config {
	return &Config{
		SNMPCacheTTLMS: 300,

		DefaultSNMPVersion:    "v2c",
		DefaultSNMPCommunity:  "public",
		DefaultSNMPTimeoutMS:  2000,
		DefaultSNMPRetries:    2,
		DefaultSNMPMaxRepeats: 20,

		InterfacePollIntervalSeconds:    300,
		SensorPollIntervalSeconds:       120,
		DeviceStatusPollIntervalSeconds: 60,
		AlertEvalIntervalSeconds:        60,

		InterfaceBatchSize: 10,
		SensorBatchSize:    5,

		InterfaceHistorySize: 100,
		SensorHistorySize:    200,

		SchedulerMemPressurePercent: 85,
		InterfaceErrorRateThreshold: 1,

		EnabledTransports: []string{"email", "webhook", "slack"},

		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,

		WorkerPoolSize:  10,
		WorkerQueueSize: 100,

		DiscoverySessionRetentionHours: 24,
		DiscoveryProgressWSAddr:        ":8090",
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile == "" {
		cfgFile = os.Getenv("YMONITOR_CONFIG")
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ymonitor")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("YMONITOR")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Validate config: fatals block startup, warnings are logged and continue.
	result := cfg.ValidateTiered()
	for _, err := range result.Warnings {
		log.Warn("config validation", "error", err)
	}
	if result.HasFatals() {
		for _, err := range result.Fatals {
			log.Error("config validation fatal", "error", err)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("postgres_dsn", cfg.PostgresDSN)
	viper.Set("timeseries_url", cfg.TimeseriesURL)
	viper.Set("redis_addr", cfg.RedisAddr)
	viper.Set("default_snmp_version", cfg.DefaultSNMPVersion)
	viper.Set("default_snmp_community", cfg.DefaultSNMPCommunity)
	viper.Set("interface_poll_interval_seconds", cfg.InterfacePollIntervalSeconds)
	viper.Set("sensor_poll_interval_seconds", cfg.SensorPollIntervalSeconds)
	viper.Set("enabled_transports", cfg.EnabledTransports)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "ymonitor.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return err
	}

	// Restrict config file to owner-only access (contains store DSNs/credentials)
	return os.Chmod(cfgPath, 0600)
}

// GetDataDir returns the platform-specific data directory for Y Monitor.
func GetDataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "YMonitor", "data")
	case "darwin":
		return "/Library/Application Support/YMonitor/data"
	default:
		return "/var/lib/ymonitor"
	}
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "YMonitor")
	case "darwin":
		return "/Library/Application Support/YMonitor"
	default:
		return "/etc/ymonitor"
	}
}
