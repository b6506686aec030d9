package log

import (
	"sort"

	"github.com/rs/zerolog"
)

// Loggable is a world that can report its registered inventory.
type Loggable interface {
	RegisteredSurfaceSpecs() []string
	RegisteredMediumSpecs() []string
	RegisteredBiomeSpecs() []string
	ActiveServices() []string
}

func loadSpecsToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	surfaces := sortedCopy(target.RegisteredSurfaceSpecs())
	mediums := sortedCopy(target.RegisteredMediumSpecs())
	biomes := sortedCopy(target.RegisteredBiomeSpecs())
	zeroLoggerEvent.Int("total_specs", len(surfaces)+len(mediums)+len(biomes))
	zeroLoggerEvent.Strs("surface_specs", surfaces)
	zeroLoggerEvent.Strs("medium_specs", mediums)
	return zeroLoggerEvent.Strs("biome_specs", biomes)
}

func loadServicesToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	services := target.ActiveServices()
	zeroLoggerEvent.Int("total_services", len(services))
	return zeroLoggerEvent.Strs("services", services)
}

// Specs logs the registered spec inventory of the world.
func Specs(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadSpecsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// Services logs the wired service names of the world.
func Services(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadServicesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// Cell logs a cell's delta accumulation state.
func Cell(logger *zerolog.Logger, level zerolog.Level, cell string, deltaCount int, kinds []string) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent.Str("cell", cell)
	zeroLoggerEvent.Int("delta_count", deltaCount)
	zeroLoggerEvent.Strs("kinds", sortedCopy(kinds)).Send()
}

// World logs everything about the world (specs and services).
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadSpecsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent = loadServicesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// CreateServiceLogger creates a sub logger with the entry {"service": serviceName}.
func CreateServiceLogger(logger *zerolog.Logger, serviceName string) *zerolog.Logger {
	newLogger := logger.With().Str("service", serviceName).Logger()
	return &newLogger
}

// CreateTraceLogger creates a trace logger. Using a single id you can use this logger to follow and log a data path.
func CreateTraceLogger(logger *zerolog.Logger, traceID string) *zerolog.Logger {
	newLogger := logger.With().Str("trace_id", traceID).Logger()
	return &newLogger
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
