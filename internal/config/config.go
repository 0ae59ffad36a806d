package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

type (
	Config struct {
		HTTP
		Global
		Rainfocus
		Event
		Database
		Pipeline
		Output
		Tasks
		CapacitySync
		Elasticsearch
		Kafka
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Rainfocus struct {
		SearchURL       string
		Referer         string
		Origin          string
		CredentialsPath string // JSON file with rfapiprofileid, rfauthtoken, rfwidgetid
		Timeout         time.Duration
		MaxRetries      int
	}
	Event struct {
		Name         string // Event profile name, e.g. amsterdam-2024
		ProfilesPath string // Optional YAML file with extra event profiles
	}
	Database struct {
		Path              string
		SnapshotRetention time.Duration
	}
	Pipeline struct {
		Workers int // Concurrent filter values during fan-out
	}
	Output struct {
		Dir string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	CapacitySync struct {
		Enabled      bool
		Schedule     string   // Cron format: "*/30 * * * *" = every 30 minutes
		SessionTypes []string // Overrides the event profile's session types
	}
	Elasticsearch struct {
		Enabled   bool
		Addresses []string
		Index     string
	}
	Kafka struct {
		Enabled bool
		Brokers []string
		Topic   string
	}
)

// splitList reads a comma separated setting.
func splitList(v *viper.Viper, key string) []string {
	var out []string
	for _, part := range strings.Split(v.GetString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("rainfocus_search_url", rainfocus.DefaultSearchURL)
	v.SetDefault("rainfocus_referer", rainfocus.DefaultReferer)
	v.SetDefault("rainfocus_origin", rainfocus.DefaultOrigin)
	v.SetDefault("rainfocus_credentials_path", DefaultCredentialsPath)
	v.SetDefault("rainfocus_timeout", "30s")
	v.SetDefault("rainfocus_max_retries", 3)

	v.SetDefault("event_name", DefaultEventName)
	v.SetDefault("event_profiles_path", "")

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("snapshot_retention", "720h") // 30 days

	v.SetDefault("pipeline_workers", 10)
	v.SetDefault("output_dir", "./output")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "10m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("capacity_sync_enabled", false)
	v.SetDefault("capacity_sync_schedule", "*/30 * * * *") // Every 30 minutes
	v.SetDefault("capacity_sync_session_types", "")

	v.SetDefault("elasticsearch_enabled", false)
	v.SetDefault("elasticsearch_addresses", "http://localhost:9200")
	v.SetDefault("elasticsearch_index", "sessions")

	v.SetDefault("kafka_enabled", false)
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_topic", "sessions")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Rainfocus: Rainfocus{
			SearchURL:       v.GetString("RAINFOCUS_SEARCH_URL"),
			Referer:         v.GetString("RAINFOCUS_REFERER"),
			Origin:          v.GetString("RAINFOCUS_ORIGIN"),
			CredentialsPath: v.GetString("RAINFOCUS_CREDENTIALS_PATH"),
			Timeout:         v.GetDuration("RAINFOCUS_TIMEOUT"),
			MaxRetries:      v.GetInt("RAINFOCUS_MAX_RETRIES"),
		},
		Event: Event{
			Name:         v.GetString("EVENT_NAME"),
			ProfilesPath: v.GetString("EVENT_PROFILES_PATH"),
		},
		Database: Database{
			Path:              v.GetString("DATABASE_PATH"),
			SnapshotRetention: v.GetDuration("SNAPSHOT_RETENTION"),
		},
		Pipeline: Pipeline{
			Workers: v.GetInt("PIPELINE_WORKERS"),
		},
		Output: Output{
			Dir: v.GetString("OUTPUT_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		CapacitySync: CapacitySync{
			Enabled:      v.GetBool("CAPACITY_SYNC_ENABLED"),
			Schedule:     v.GetString("CAPACITY_SYNC_SCHEDULE"),
			SessionTypes: splitList(v, "CAPACITY_SYNC_SESSION_TYPES"),
		},
		Elasticsearch: Elasticsearch{
			Enabled:   v.GetBool("ELASTICSEARCH_ENABLED"),
			Addresses: splitList(v, "ELASTICSEARCH_ADDRESSES"),
			Index:     v.GetString("ELASTICSEARCH_INDEX"),
		},
		Kafka: Kafka{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: splitList(v, "KAFKA_BROKERS"),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}
}

// RainfocusConfig builds the search client configuration. Credentials are
// passed in explicitly; see LoadCredentials.
func (c *Config) RainfocusConfig(creds rainfocus.Credentials) rainfocus.Config {
	return rainfocus.Config{
		SearchURL:   c.Rainfocus.SearchURL,
		Referer:     c.Rainfocus.Referer,
		Origin:      c.Rainfocus.Origin,
		Credentials: creds,
		Timeout:     c.Rainfocus.Timeout,
		MaxRetries:  c.Rainfocus.MaxRetries,
	}
}
