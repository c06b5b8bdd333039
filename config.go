package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Default settings applied by InitConfig for non provided values.
const (
	DefaultConfigFile        = "./config.yml"
	DefaultEnvFile           = "./config.env"
	DefaultLogFolder         = "./logs"
	DefaultLogMaxSize        = 100
	DefaultSessionCookieName = "readscape_session"
	DefaultOrdersQueueSize   = 128
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string        `yaml:"git_commit" envconfig:"RSAP_GIT_COMMIT"`
	GitTag                  string        `yaml:"git_tag" envconfig:"RSAP_GIT_TAG"`
	BuildTime               string        `yaml:"build_time" envconfig:"RSAP_BUILD_TIME"`
	IsProduction            bool          `yaml:"is_production" envconfig:"RSAP_IS_PRODUCTION"`
	LogLevel                zapcore.Level `yaml:"log_level" envconfig:"RSAP_LOG_LEVEL"`
	LogFolder               string        `yaml:"log_folder" envconfig:"RSAP_LOG_FOLDER"`
	LogMaxSize              int           `yaml:"log_max_size" envconfig:"RSAP_LOG_MAX_SIZE"` // in megabytes
	OpsEndpointsEnable      bool          `yaml:"ops_endpoints_enable" envconfig:"RSAP_OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool          `yaml:"profiler_endpoints_enable" envconfig:"RSAP_PROFILER_ENDPOINTS_ENABLE"`
	StorageBackend          string        `yaml:"storage_backend" envconfig:"RSAP_STORAGE_BACKEND"`
	CatalogFile             string        `yaml:"catalog_file" envconfig:"RSAP_CATALOG_FILE"`
	OrdersQueueSize         int           `yaml:"orders_queue_size" envconfig:"RSAP_ORDERS_QUEUE_SIZE"`
	Server                  ServerConfig  `yaml:"server"`
	Redis                   RedisConfig   `yaml:"redis"`
	BoltDB                  BoltDBConfig  `yaml:"boltdb"`
	SQLite                  SQLiteConfig  `yaml:"sqlite"`
	Session                 SessionConfig `yaml:"session"`
	Pricing                 Pricing       `yaml:"pricing"`
}

type ServerConfig struct {
	Host                    string        `yaml:"host" envconfig:"RSAP_SERVER_HOST"`
	Port                    string        `yaml:"port" envconfig:"RSAP_SERVER_PORT"`
	ReadTimeout             time.Duration `yaml:"read_timeout" envconfig:"RSAP_SERVER_READ_TIMEOUT"`
	WriteTimeout            time.Duration `yaml:"write_timeout" envconfig:"RSAP_SERVER_WRITE_TIMEOUT"`
	RequestTimeout          time.Duration `yaml:"request_timeout" envconfig:"RSAP_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	LongRequestWriteTimeout time.Duration `yaml:"long_request_write_timeout" envconfig:"RSAP_SERVER_LONG_REQUEST_WRITE_TIMEOUT"`
	EventsKeepAlive         time.Duration `yaml:"events_keep_alive" envconfig:"RSAP_SERVER_EVENTS_KEEP_ALIVE"`
	ShutdownTimeout         time.Duration `yaml:"shutdown_timeout" envconfig:"RSAP_SERVER_SHUTDOWN_TIMEOUT"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"RSAP_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"RSAP_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"RSAP_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"RSAP_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"RSAP_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"RSAP_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"RSAP_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"RSAP_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"RSAP_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"RSAP_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath         string        `yaml:"filepath" envconfig:"RSAP_BOLTDB_FILE_PATH"`
	Timeout          time.Duration `yaml:"timeout" envconfig:"RSAP_BOLTDB_TIMEOUT"`
	BucketName       string        `yaml:"bucket_name" envconfig:"RSAP_BOLTDB_BUCKET_NAME"`
	OrdersBucketName string        `yaml:"orders_bucket_name" envconfig:"RSAP_BOLTDB_ORDERS_BUCKET_NAME"`
}

type SQLiteConfig struct {
	FilePath string `yaml:"filepath" envconfig:"RSAP_SQLITE_FILE_PATH"`
}

type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name" envconfig:"RSAP_SESSION_COOKIE_NAME"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" envconfig:"RSAP_SESSION_IDLE_TIMEOUT"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"RSAP_SESSION_SWEEP_INTERVAL"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	setDefaultDuration(&config.Server.ReadTimeout, 10*time.Second)
	setDefaultDuration(&config.Server.WriteTimeout, 15*time.Second)
	setDefaultDuration(&config.Server.RequestTimeout, 10*time.Second)
	setDefaultDuration(&config.Server.LongRequestWriteTimeout, 60*time.Second)
	setDefaultDuration(&config.Server.EventsKeepAlive, 15*time.Second)
	setDefaultDuration(&config.Server.ShutdownTimeout, 30*time.Second)

	if len(config.LogFolder) == 0 {
		config.LogFolder = DefaultLogFolder
	}
	if config.LogMaxSize <= 0 {
		config.LogMaxSize = DefaultLogMaxSize
	}
	if config.OrdersQueueSize <= 0 {
		config.OrdersQueueSize = DefaultOrdersQueueSize
	}

	if len(config.StorageBackend) == 0 {
		config.StorageBackend = BackendMemory
	}
	switch config.StorageBackend {
	case BackendMemory, BackendBolt:
	case BackendRedis:
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
	case BackendSQLite:
		if len(config.SQLite.FilePath) == 0 {
			return errors.New("make sure to set a valid sqlite file path in configuration file")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (supported: memory, redis, boltdb, sqlite)", config.StorageBackend)
	}

	if len(config.BoltDB.FilePath) == 0 {
		return errors.New("make sure to set a valid boltdb file path in configuration file")
	}
	setDefaultDuration(&config.BoltDB.Timeout, 5*time.Second)
	if len(config.BoltDB.BucketName) == 0 {
		config.BoltDB.BucketName = "slots"
	}
	if len(config.BoltDB.OrdersBucketName) == 0 {
		config.BoltDB.OrdersBucketName = "orders"
	}

	if len(config.Session.CookieName) == 0 {
		config.Session.CookieName = DefaultSessionCookieName
	}
	setDefaultDuration(&config.Session.IdleTimeout, 30*time.Minute)
	setDefaultDuration(&config.Session.SweepInterval, time.Minute)

	if config.Pricing == (Pricing{}) {
		config.Pricing = DefaultPricing()
	}
	if config.Pricing.FreeShippingOver.IsNegative() || config.Pricing.ShippingFee.IsNegative() || config.Pricing.TaxRate.IsNegative() {
		return errors.New("make sure pricing values are not negative in configuration file")
	}

	return nil
}

func setDefaultDuration(d *time.Duration, value time.Duration) {
	if *d <= 0 {
		*d = value
	}
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load(envFile)
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `RSAP`.
	err = LoadConfigEnvs("RSAP", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
