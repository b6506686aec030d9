package terra

import (
	"os"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/types"
)

// RunMode names the deployment mode of a world.
type RunMode string

const (
	RunModeDev  RunMode = "development"
	RunModeProd RunMode = "production"
)

// StoreBackend names the persistence backend of a world.
type StoreBackend string

const (
	StoreBackendFile  StoreBackend = "file"
	StoreBackendRedis StoreBackend = "redis"
)

const (
	DefaultLogLevel      = "info"
	DefaultStatsdAddress = "localhost:8125"
	DefaultSaveDir       = "./saves"

	// DefaultAutoFlushTicks is how many ticks pass between automatic
	// flushes of dirty cells.
	DefaultAutoFlushTicks = 60
)

var defaultConfig = WorldConfig{
	RedisAddress:        "localhost:6379",
	RedisPassword:       "",
	TerraNamespace:      "world",
	TerraMode:           RunModeDev,
	TerraStoreBackend:   StoreBackendFile,
	TerraSaveDir:        DefaultSaveDir,
	TerraPackDir:        "",
	TerraLogLevel:       DefaultLogLevel,
	TerraLogPretty:      false,
	TerraAutoFlushTicks: DefaultAutoFlushTicks,
	StatsdAddress:       DefaultStatsdAddress,
	TraceAddress:        "",
}

type WorldConfig struct {
	RedisAddress        string       `config:"REDIS_ADDRESS"`
	RedisPassword       string       `config:"REDIS_PASSWORD"`
	TerraNamespace      string       `config:"TERRA_NAMESPACE"`
	TerraMode           RunMode      `config:"TERRA_MODE"`
	TerraStoreBackend   StoreBackend `config:"TERRA_STORE_BACKEND"`
	TerraSaveDir        string       `config:"TERRA_SAVE_DIR"`
	TerraPackDir        string       `config:"TERRA_PACK_DIR"`
	TerraLogLevel       string       `config:"TERRA_LOG_LEVEL"`
	TerraLogPretty      bool         `config:"TERRA_LOG_PRETTY"`
	TerraAutoFlushTicks uint64       `config:"TERRA_AUTO_FLUSH_TICKS"`
	StatsdAddress       string       `config:"STATSD_ADDRESS"`
	TraceAddress        string       `config:"TRACE_ADDRESS"`
}

// loadWorldConfig loads the world config from environment variables,
// falling back to defaultConfig for anything unset.
func loadWorldConfig() (*WorldConfig, error) {
	cfg := defaultConfig
	if err := config.FromEnv().To(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to load world config from env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid world config")
	}
	return &cfg, nil
}

func (cfg WorldConfig) Validate() error {
	if cfg.TerraMode != RunModeDev && cfg.TerraMode != RunModeProd {
		return eris.Errorf("TERRA_MODE must be %q or %q, got %q", RunModeDev, RunModeProd, cfg.TerraMode)
	}
	if cfg.TerraStoreBackend != StoreBackendFile && cfg.TerraStoreBackend != StoreBackendRedis {
		return eris.Errorf("TERRA_STORE_BACKEND must be %q or %q, got %q",
			StoreBackendFile, StoreBackendRedis, cfg.TerraStoreBackend)
	}
	if err := types.Namespace(cfg.TerraNamespace).Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(cfg.TerraLogLevel); err != nil {
		return eris.Wrapf(err, "TERRA_LOG_LEVEL %q is not a zerolog level", cfg.TerraLogLevel)
	}
	if cfg.TerraAutoFlushTicks == 0 {
		return eris.New("TERRA_AUTO_FLUSH_TICKS must be at least 1")
	}
	if cfg.TerraStoreBackend == StoreBackendFile && cfg.TerraSaveDir == "" {
		return eris.New("TERRA_SAVE_DIR must be set when using the file store")
	}

	// A production world must not lose its saves with the container, and
	// must not run against an open redis.
	if cfg.TerraMode == RunModeProd {
		if cfg.TerraStoreBackend != StoreBackendRedis {
			return eris.New("production mode requires the redis store backend")
		}
		if cfg.RedisPassword == "" {
			return eris.New("production mode requires REDIS_PASSWORD to be set")
		}
	}
	return nil
}

// setupLogger applies the configured level and output format to the global
// zerolog logger.
func (cfg WorldConfig) setupLogger() error {
	level, err := zerolog.ParseLevel(cfg.TerraLogLevel)
	if err != nil {
		return eris.Wrapf(err, "TERRA_LOG_LEVEL %q is not a zerolog level", cfg.TerraLogLevel)
	}
	zerolog.SetGlobalLevel(level)
	if cfg.TerraLogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}
