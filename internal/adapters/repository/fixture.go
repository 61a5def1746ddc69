package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/projdash/internal/domain/model"
	"github.com/okian/projdash/pkg/logger"
	"github.com/okian/projdash/pkg/metrics"
)

const defaultRandomSeed = 42

// FixtureStore serves the four dashboard collaborators from a Catalog.
// Lookups optionally sleep for a random duration within the latency range.
type FixtureStore struct {
	sampleProjects map[string]model.ProjectSummary
	myProjects     map[string]model.ProjectSummary
	feeds          []model.FeedEntry
	experiments    []model.ExperimentSummary

	minLatency time.Duration
	maxLatency time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	logger logger.Logger
}

// NewFixtureStore indexes cat for lookups.
func NewFixtureStore(cat Catalog, opts ...Option) *FixtureStore {
	s := &FixtureStore{
		sampleProjects: make(map[string]model.ProjectSummary, len(cat.SampleProjects)),
		myProjects:     make(map[string]model.ProjectSummary, len(cat.MyProjects)),
		feeds:          append([]model.FeedEntry(nil), cat.Feeds...),
		experiments:    append([]model.ExperimentSummary(nil), cat.RunningExperiments...),
		rng:            rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // simulated latency only
		logger:         logger.Nop(),
	}
	for _, p := range cat.SampleProjects {
		s.sampleProjects[p.ID] = p
	}
	for _, p := range cat.MyProjects {
		s.myProjects[p.ID] = p
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateFixtureRecords("sample_projects", len(s.sampleProjects))
	metrics.UpdateFixtureRecords("my_projects", len(s.myProjects))
	metrics.UpdateFixtureRecords("feeds", len(s.feeds))
	metrics.UpdateFixtureRecords("running_experiments", len(s.experiments))
	return s
}

// FetchSampleProject returns the marketplace sample project with the given id.
func (s *FixtureStore) FetchSampleProject(ctx context.Context, id string) (model.ProjectSummary, error) {
	defer s.observe(time.Now())
	if err := s.delay(ctx); err != nil {
		return model.ProjectSummary{}, err
	}
	p, ok := s.sampleProjects[id]
	if !ok {
		return model.ProjectSummary{}, fmt.Errorf("sample project %q: %w", id, model.ErrNotFound)
	}
	return p, nil
}

// FetchMyProject returns the caller's project with the given id.
func (s *FixtureStore) FetchMyProject(ctx context.Context, id string) (model.ProjectSummary, error) {
	defer s.observe(time.Now())
	if err := s.delay(ctx); err != nil {
		return model.ProjectSummary{}, err
	}
	p, ok := s.myProjects[id]
	if !ok {
		return model.ProjectSummary{}, fmt.Errorf("project %q: %w", id, model.ErrNotFound)
	}
	return p, nil
}

// FetchFeeds returns the feed in catalogue order.
func (s *FixtureStore) FetchFeeds(ctx context.Context) ([]model.FeedEntry, error) {
	defer s.observe(time.Now())
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return append([]model.FeedEntry{}, s.feeds...), nil
}

// FetchRunningExperiments returns the running experiments in catalogue order.
func (s *FixtureStore) FetchRunningExperiments(ctx context.Context) ([]model.ExperimentSummary, error) {
	defer s.observe(time.Now())
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return append([]model.ExperimentSummary{}, s.experiments...), nil
}

func (s *FixtureStore) delay(ctx context.Context) error {
	if s.maxLatency <= 0 {
		return nil
	}
	latency := s.minLatency
	if spread := s.maxLatency - s.minLatency; spread > 0 {
		s.rngMu.Lock()
		latency += time.Duration(s.rng.Int63n(int64(spread)))
		s.rngMu.Unlock()
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.logger.Debug(ctx, "fixture lookup abandoned", logger.Error(ctx.Err()))
		return fmt.Errorf("%w: %v", model.ErrTransport, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (s *FixtureStore) observe(start time.Time) {
	metrics.RecordFixtureQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
