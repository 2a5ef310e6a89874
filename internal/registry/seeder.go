package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Sentinel/backend/internal/breaker"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
)

// Definition is the on-disk form of a breaker declaration
type Definition struct {
	Name              string  `yaml:"name"`
	FailureThreshold  int     `yaml:"failure_threshold"`
	SuccessThreshold  int     `yaml:"success_threshold"`
	OpenTimeoutSecs   int     `yaml:"open_timeout_seconds"`
	WindowSecs        int     `yaml:"monitoring_window_seconds"`
	HalfOpenMaxProbes int     `yaml:"half_open_max_probes"`
	Description       string  `yaml:"description"`
	ForceState        *string `yaml:"force_state"`
}

// Config converts the definition to breaker config, filling omitted
// fields from the provided defaults
func (d *Definition) Config(defaults breaker.Config) breaker.Config {
	cfg := defaults
	if d.FailureThreshold > 0 {
		cfg.FailureThreshold = d.FailureThreshold
	}
	if d.SuccessThreshold > 0 {
		cfg.SuccessThreshold = d.SuccessThreshold
	}
	if d.OpenTimeoutSecs > 0 {
		cfg.OpenTimeout = time.Duration(d.OpenTimeoutSecs) * time.Second
	}
	if d.WindowSecs > 0 {
		cfg.MonitoringWindow = time.Duration(d.WindowSecs) * time.Second
	}
	if d.HalfOpenMaxProbes > 0 {
		cfg.HalfOpenMaxProbes = d.HalfOpenMaxProbes
	}
	return cfg
}

// Seeder loads breaker definitions from disk into a registry
type Seeder struct {
	registry *breaker.Registry
	defaults breaker.Config
	dir      string
	logger   *logging.Logger
}

// NewSeeder creates a breaker definition seeder
func NewSeeder(registry *breaker.Registry, defaults breaker.Config, dir string, logger *logging.Logger) *Seeder {
	return &Seeder{
		registry: registry,
		defaults: defaults,
		dir:      dir,
		logger:   logger.Named("seeder"),
	}
}

// Seed loads all YAML definitions from the seed directory. A missing
// directory is not an error; a malformed file is skipped with a log
// line rather than failing the whole seed.
func (s *Seeder) Seed() error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Info("Breaker definition directory not found, skipping seed",
			zap.String("dir", s.dir))
		return nil
	}

	var loaded, failed int

	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(info.Name(), ".yaml") && !strings.HasSuffix(info.Name(), ".yml") {
			return nil
		}

		if err := s.loadDefinition(path); err != nil {
			s.logger.Warn("Failed to load breaker definition",
				zap.String("file", info.Name()),
				zap.Error(err))
			failed++
		} else {
			loaded++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", s.dir, err)
	}

	s.logger.Info("Breaker seeding complete",
		zap.Int("loaded", loaded),
		zap.Int("failed", failed))
	return nil
}

func (s *Seeder) loadDefinition(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("parse definition: %w", err)
	}
	if def.Name == "" {
		return fmt.Errorf("definition missing name")
	}

	cb, err := s.registry.Create(def.Name, def.Config(s.defaults))
	if err != nil {
		return err
	}

	if def.ForceState != nil {
		switch strings.ToLower(*def.ForceState) {
		case "open":
			cb.ForceOpen()
		case "half_open":
			cb.ForceHalfOpen()
		case "closed", "":
			// Breakers start closed
		default:
			return fmt.Errorf("unknown force_state %q", *def.ForceState)
		}
	}

	s.logger.Info("Seeded breaker",
		zap.String("name", def.Name),
		zap.String("file", filepath.Base(path)))
	return nil
}
