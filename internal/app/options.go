package service

import (
	"time"

	"github.com/okian/dkp/internal/adapters/ingest"
	"github.com/okian/dkp/internal/adapters/repository"
	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/okian/dkp/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the profile store. The service closes it on Stop.
func WithStore(store repository.Store, kind string) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.storeKind = kind
		}
	}
}

// WithParser sets the snapshot parser.
func WithParser(p *ingest.Parser) Option {
	return func(s *Service) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithDefaultSettings sets the weights used when a caller supplies none.
func WithDefaultSettings(cfg scoring.Config) Option {
	return func(s *Service) {
		s.defaults = cfg.Sanitize()
	}
}

// WithFighterMinPower sets the starting power floor of the fighters view.
func WithFighterMinPower(p int64) Option {
	return func(s *Service) {
		if p > 0 {
			s.fighterMinPower = p
		}
	}
}

// WithWorkerCount sets the number of workers used by RecomputeAll.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithClock overrides the time source used to stamp profiles.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
