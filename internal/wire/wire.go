// Package wire provides dependency injection for the swarmd
// application. It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"sync"
	"time"

	"github.com/example/swarmd/internal/adapters/filesystem"
	"github.com/example/swarmd/internal/app"
	"github.com/example/swarmd/internal/config"
	"github.com/example/swarmd/internal/core/detection"
	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/ports/secondary"
)

var (
	cfg      *config.Config
	store    secondary.JobStore
	registry secondary.AgentRegistry
	events   secondary.EventLog

	jobService   primary.JobService
	agentService primary.AgentService
	emitter      *app.EmitterImpl

	once sync.Once
)

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// JobService returns the singleton JobService instance.
func JobService() primary.JobService {
	once.Do(initServices)
	return jobService
}

// AgentService returns the singleton AgentService instance.
func AgentService() primary.AgentService {
	once.Do(initServices)
	return agentService
}

// Emitter returns the singleton hook emitter.
func Emitter() *app.EmitterImpl {
	once.Do(initServices)
	return emitter
}

// Daemon returns a new coordination daemon writing to out. Each call
// creates a fresh instance; daemons carry their own loop state.
func Daemon(detector detection.Detector, out io.Writer, interactive bool) *app.Daemon {
	once.Do(initServices)
	return app.NewDaemon(store, registry, events, agentService, detector, cfg, out, interactive)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	loaded, err := config.LoadConfig(".")
	if err != nil {
		log.Warn("failed to load config, using defaults", "error", err)
		loaded = config.Default()
	}
	cfg = loaded

	paths := filesystem.Paths{Root: cfg.StateDir}
	if err := paths.EnsureStateDirs(); err != nil {
		log.Warn("failed to create state directories", "error", err)
	}

	// Filesystem adapters (secondary ports) over the shared state dir
	store = filesystem.NewJobStore(cfg.StateDir)
	registry = filesystem.NewRegistry(cfg.StateDir)
	events = filesystem.NewEventLog(cfg.StateDir)

	// Services (primary ports implementation)
	jobService = app.NewJobService(store, events)
	agentService = app.NewAgentService(registry, events)
	emitter = app.NewEmitter(registry, events, time.Duration(cfg.HookTimeout))
}
