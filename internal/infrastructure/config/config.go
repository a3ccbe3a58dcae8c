package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// StorageConfig tunes the synchronized storage core. Backend selects the
// remote store implementation.
type StorageConfig struct {
	Backend       string        `env:"STORAGE_BACKEND,        default=redis"` // redis | mongo
	LocalPath     string        `env:"STORAGE_LOCAL_PATH,     default=data/ispadmin.db"`
	SetTimeout    time.Duration `env:"STORAGE_SET_TIMEOUT,    default=3s"`
	FetchTimeout  time.Duration `env:"STORAGE_FETCH_TIMEOUT,  default=4s"`
	ProbeTimeout  time.Duration `env:"STORAGE_PROBE_TIMEOUT,  default=3s"`
	RetryInterval time.Duration `env:"STORAGE_RETRY_INTERVAL, default=5s"`
	SeedInterval  time.Duration `env:"STORAGE_SEED_INTERVAL,  default=5m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=isp_admin"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
