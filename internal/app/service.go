// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/dkp/internal/adapters/ingest"
	"github.com/okian/dkp/internal/adapters/repository"
	"github.com/okian/dkp/internal/adapters/worker"
	"github.com/okian/dkp/internal/domain/aggregate"
	"github.com/okian/dkp/internal/domain/compare"
	"github.com/okian/dkp/internal/domain/profile"
	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/okian/dkp/internal/domain/snapshot"
	"github.com/okian/dkp/pkg/logger"
	"github.com/okian/dkp/pkg/metrics"
)

// Storage kind reported when no store was injected.
const defaultStoreKind = "memory"

// defaultWorkerMultiplier sizes the recompute pool per CPU.
const defaultWorkerMultiplier = 2

// QuadrantView is the classification of one result set.
type QuadrantView struct {
	Means    aggregate.Means            `json:"means"`
	Counts   map[aggregate.Quadrant]int `json:"counts"`
	Entities []aggregate.Classified     `json:"entities"`
}

// Analysis is a scored result set with its rollups.
type Analysis struct {
	Entities  []scoring.Entity  `json:"entities"`
	Summary   aggregate.Summary `json:"summary"`
	Quadrants QuadrantView      `json:"quadrants"`
}

// Service implements the API dependencies for the DKP system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	storeKind string
	parser    *ingest.Parser

	// Configuration
	defaults        scoring.Config
	fighterMinPower int64
	workerCount     int
	now             func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaults:        scoring.DefaultConfig(),
		fighterMinPower: roster.DefaultFighterMinPower,
		workerCount:     runtime.NumCPU() * defaultWorkerMultiplier,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.parser == nil {
		s.parser = ingest.NewParser()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.storeKind = defaultStoreKind
	}

	stored := s.store.Count(ctx)
	metrics.UpdateProfilesStored(stored)

	s.started = true
	s.logger.Info(ctx, "dkp service started",
		logger.String("storage", s.storeKind),
		logger.Int("profiles", stored),
		logger.Int("workers", s.workerCount),
	)
	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping dkp service...")
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "closing store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "dkp service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// DefaultSettings returns the weights applied when a request carries none.
func (s *Service) DefaultSettings() scoring.Config {
	return s.defaults
}

// Compute scores two raw exports without storing anything.
func (s *Service) Compute(ctx context.Context, startCSV, endCSV string, cfg scoring.Config) (Analysis, error) {
	if err := s.ready(); err != nil {
		return Analysis{}, err
	}
	entities, err := s.score(ctx, startCSV, endCSV, cfg)
	if err != nil {
		return Analysis{}, err
	}
	return s.Analyze(ctx, entities), nil
}

// Analyze derives the summary and quadrants of a scored result set.
func (s *Service) Analyze(ctx context.Context, entities []scoring.Entity) Analysis {
	var (
		wg      sync.WaitGroup
		summary aggregate.Summary
		view    QuadrantView
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		summary = aggregate.Summarize(entities)
	}()
	go func() {
		defer wg.Done()
		view = classify(entities)
	}()
	wg.Wait()

	s.logger.Debug(ctx, "result set analysed",
		logger.Int("entities", len(entities)),
		logger.Int("classified", len(view.Entities)),
	)
	return Analysis{Entities: entities, Summary: summary, Quadrants: view}
}

func classify(entities []scoring.Entity) QuadrantView {
	classified, means := aggregate.ClassifyWithMeans(entities)
	counts := aggregate.Count(classified)
	return QuadrantView{Means: means, Counts: counts, Entities: classified}
}

// score parses both exports concurrently and runs the diff.
func (s *Service) score(ctx context.Context, startCSV, endCSV string, cfg scoring.Config) ([]scoring.Entity, error) {
	var start, end snapshot.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		start, err = s.parse(gctx, "start", startCSV)
		return err
	})
	g.Go(func() error {
		var err error
		end, err = s.parse(gctx, "end", endCSV)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	began := time.Now()
	entities := scoring.Compute(start, end, cfg)
	latency := float64(time.Since(began).Microseconds()) / 1000
	metrics.RecordComputation(len(entities), latency)
	for q, n := range aggregate.Count(aggregate.Classify(entities)) {
		metrics.RecordQuadrant(string(q), n)
	}

	s.logger.Info(ctx, "snapshots scored",
		logger.Int("start_rows", len(start)),
		logger.Int("end_rows", len(end)),
		logger.Int("entities", len(entities)),
		logger.Float64("latency_ms", latency),
	)
	return entities, nil
}

func (s *Service) parse(ctx context.Context, which, raw string) (snapshot.Snapshot, error) {
	snap, err := s.parser.ParseString(ctx, raw)
	if err != nil {
		reason := ingestReason(err)
		metrics.RecordIngestError(reason)
		metrics.RecordErrorByComponent("ingest", reason)
		s.logger.Warn(ctx, "snapshot rejected",
			logger.String("snapshot", which),
			logger.String("reason", reason),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%s snapshot: %w", which, err)
	}
	metrics.RecordSnapshotRows(len(snap))
	return snap, nil
}

func ingestReason(err error) string {
	switch {
	case errors.Is(err, ingest.ErrMissingColumns):
		return "missing_columns"
	case errors.Is(err, ingest.ErrEmptySnapshot):
		return "empty"
	case errors.Is(err, ingest.ErrTooManyRows):
		return "too_many_rows"
	case errors.Is(err, ingest.ErrMalformed):
		return "malformed"
	default:
		return "other"
	}
}

// SaveProfile scores and stores two exports under name, replacing any
// profile of that name. With both exports empty it recomputes the stored
// profile with cfg instead; when there is none, that is ErrSnapshotsRequired.
func (s *Service) SaveProfile(ctx context.Context, name, startCSV, endCSV string, cfg scoring.Config) (profile.Profile, error) {
	if err := s.ready(); err != nil {
		return profile.Profile{}, err
	}
	if _, err := profile.NormalizeName(name); err != nil {
		return profile.Profile{}, err
	}

	switch {
	case startCSV == "" && endCSV == "":
		p, err := s.RecomputeProfile(ctx, name, cfg)
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Profile{}, fmt.Errorf("%w: no stored profile %q to recompute", ErrSnapshotsRequired, name)
		}
		return p, err
	case startCSV == "" || endCSV == "":
		return profile.Profile{}, ErrSnapshotsRequired
	}

	entities, err := s.score(ctx, startCSV, endCSV, cfg)
	if err != nil {
		return profile.Profile{}, err
	}
	return s.save(ctx, name, startCSV, endCSV, cfg.Sanitize(), entities)
}

// RecomputeProfile rescores a stored profile's snapshots with cfg.
func (s *Service) RecomputeProfile(ctx context.Context, name string, cfg scoring.Config) (profile.Profile, error) {
	if err := s.ready(); err != nil {
		return profile.Profile{}, err
	}
	existing, err := s.GetProfile(ctx, name)
	if err != nil {
		return profile.Profile{}, err
	}
	if existing.StartRaw == "" || existing.EndRaw == "" {
		return profile.Profile{}, ErrNothingToRecompute
	}

	entities, err := s.score(ctx, existing.StartRaw, existing.EndRaw, cfg)
	if err != nil {
		return profile.Profile{}, err
	}
	return s.save(ctx, existing.Name, existing.StartRaw, existing.EndRaw, cfg.Sanitize(), entities)
}

// RecomputeAll rescores every stored profile on the worker pool. A nil
// override keeps each profile's own settings.
func (s *Service) RecomputeAll(ctx context.Context, override *scoring.Config) ([]worker.Result, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	infos, err := s.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make([]worker.Job, 0, len(infos))
	for _, info := range infos {
		job := worker.Job{Name: info.Name}
		if override != nil {
			job.Settings = *override
		}
		jobs = append(jobs, job)
	}

	pool := worker.NewPool(s.workerCount, worker.ProcessorFunc(func(ctx context.Context, job worker.Job) (int, error) {
		settings := job.Settings
		if override == nil {
			p, err := s.GetProfile(ctx, job.Name)
			if err != nil {
				return 0, err
			}
			settings = p.Settings
		}
		p, err := s.RecomputeProfile(ctx, job.Name, settings)
		if err != nil {
			return 0, err
		}
		return len(p.Entities), nil
	}), worker.WithLogger(s.logger.Named("recompute")))

	results := pool.Run(ctx, jobs)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info(ctx, "profiles recomputed",
		logger.Int("profiles", len(results)),
		logger.Int("failed", failed),
	)
	return results, nil
}

func (s *Service) save(ctx context.Context, name, startRaw, endRaw string, cfg scoring.Config, entities []scoring.Entity) (profile.Profile, error) {
	p, err := profile.New(name, startRaw, endRaw, cfg, entities, s.now())
	if err != nil {
		return profile.Profile{}, err
	}

	began := time.Now()
	saved, err := s.store.Save(ctx, p)
	s.observeStore(ctx, "save", began, err)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("save profile %q: %w", p.Name, err)
	}

	metrics.RecordProfileSaved()
	metrics.UpdateProfilesStored(s.store.Count(ctx))
	s.logger.Info(ctx, "profile saved",
		logger.String("profile", saved.Name),
		logger.String("id", saved.ID),
		logger.Int("entities", len(saved.Entities)),
	)
	return saved, nil
}

func (s *Service) observeStore(ctx context.Context, op string, began time.Time, err error) {
	latency := float64(time.Since(began).Microseconds()) / 1000
	metrics.RecordStoreLatency(op, latency)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordErrorByComponent("store", op)
		metrics.RecordErrorLatency("store", op, latency)
		s.logger.Error(ctx, "store operation failed", logger.String("op", op), logger.Error(err))
	}
}

// GetProfile loads a stored profile by name.
func (s *Service) GetProfile(ctx context.Context, name string) (profile.Profile, error) {
	if err := s.ready(); err != nil {
		return profile.Profile{}, err
	}
	name, err := profile.NormalizeName(name)
	if err != nil {
		return profile.Profile{}, err
	}
	began := time.Now()
	p, err := s.store.Get(ctx, name)
	s.observeStore(ctx, "get", began, err)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return p, nil
}

// ListProfiles lists stored profiles in name order.
func (s *Service) ListProfiles(ctx context.Context) ([]profile.Info, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	began := time.Now()
	list, err := s.store.List(ctx)
	s.observeStore(ctx, "list", began, err)
	return list, err
}

// DeleteProfile removes a stored profile.
func (s *Service) DeleteProfile(ctx context.Context, name string) error {
	if err := s.ready(); err != nil {
		return err
	}
	name, err := profile.NormalizeName(name)
	if err != nil {
		return err
	}
	began := time.Now()
	err = s.store.Delete(ctx, name)
	s.observeStore(ctx, "delete", began, err)
	if err != nil {
		return fmt.Errorf("profile %q: %w", name, err)
	}

	metrics.RecordProfileDeleted()
	metrics.UpdateProfilesStored(s.store.Count(ctx))
	s.logger.Info(ctx, "profile deleted", logger.String("profile", name))
	return nil
}

// Entities returns a stored profile's governors filtered by q and sorted.
func (s *Service) Entities(ctx context.Context, name string, col roster.Column, dir roster.Direction, q string) ([]scoring.Entity, error) {
	p, err := s.GetProfile(ctx, name)
	if err != nil {
		return nil, err
	}
	return roster.Sort(roster.Search(p.Entities, q), col, dir), nil
}

// Summary returns the kingdom summary of a stored profile.
func (s *Service) Summary(ctx context.Context, name string) (aggregate.Summary, error) {
	p, err := s.GetProfile(ctx, name)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.Summarize(p.Entities), nil
}

// Quadrants classifies a stored profile's governors.
func (s *Service) Quadrants(ctx context.Context, name string) (QuadrantView, error) {
	p, err := s.GetProfile(ctx, name)
	if err != nil {
		return QuadrantView{}, err
	}
	return classify(p.Entities), nil
}

// Fighters returns the fighters view of a stored profile.
func (s *Service) Fighters(ctx context.Context, name string) ([]roster.Ranked, error) {
	p, err := s.GetProfile(ctx, name)
	if err != nil {
		return nil, err
	}
	return roster.Fighters(p.Entities, s.fighterMinPower), nil
}

// ComparePlayers compares up to three governors of one stored profile.
func (s *Service) ComparePlayers(ctx context.Context, name string, ids []string) (compare.PlayerComparison, error) {
	p, err := s.GetProfile(ctx, name)
	if err != nil {
		return compare.PlayerComparison{}, err
	}
	return compare.Players(p.Entities, ids)
}

// CompareKingdoms compares the summaries of two stored profiles.
func (s *Service) CompareKingdoms(ctx context.Context, nameA, nameB string) (compare.KingdomComparison, error) {
	a, err := s.GetProfile(ctx, nameA)
	if err != nil {
		return compare.KingdomComparison{}, err
	}
	b, err := s.GetProfile(ctx, nameB)
	if err != nil {
		return compare.KingdomComparison{}, err
	}
	return compare.Kingdoms(a.Name, aggregate.Summarize(a.Entities), b.Name, aggregate.Summarize(b.Entities)), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"storage":         s.storeKind,
		"workerCount":     s.workerCount,
		"fighterMinPower": s.fighterMinPower,
		"settings":        s.defaults,
	}

	if s.started {
		profiles := s.store.Count(context.Background())
		stats["profiles"] = profiles
		metrics.UpdateProfilesStored(profiles)
	}

	return stats
}
