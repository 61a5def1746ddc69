// Package overview implements the project overview dashboard page.
package overview

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/projdash/internal/domain/model"
	"github.com/okian/projdash/internal/domain/viewstate"
	"github.com/okian/projdash/pkg/logger"
	"github.com/okian/projdash/pkg/metrics"
)

// PageName labels this page in logs and metrics.
const PageName = "overview"

// DefaultProjectID is the project shown when none is configured.
const DefaultProjectID = "60ab72950fb5890a912f41fa"

// Fetchers are the collaborators the overview page reads from.
type Fetchers interface {
	FetchMyProject(ctx context.Context, id string) (model.ProjectSummary, error)
	FetchFeeds(ctx context.Context) ([]model.FeedEntry, error)
	FetchRunningExperiments(ctx context.Context) ([]model.ExperimentSummary, error)
}

const (
	haveProject uint8 = 1 << iota
	haveFeeds
	haveExperiments

	haveAll = haveProject | haveFeeds | haveExperiments
)

// Data is the payload of a ready overview page.
type Data struct {
	Project     model.ProjectSummary
	Feeds       []model.FeedEntry
	Experiments []model.ExperimentSummary

	loaded uint8
}

func (d *Data) mark(part uint8) bool {
	d.loaded |= part
	return d.loaded == haveAll
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithProjectID overrides the fixed project id.
func WithProjectID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.projectID = id
		}
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller drives the overview page's load cycles.
type Controller struct {
	src       Fetchers
	projectID string
	holder    *viewstate.Holder[Data]
	logger    logger.Logger

	mu      sync.Mutex
	settled chan struct{}
}

// New constructs a Controller reading from src.
func New(src Fetchers, opts ...Option) *Controller {
	c := &Controller{
		src:       src,
		projectID: DefaultProjectID,
		holder:    viewstate.NewHolder[Data](),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProjectID returns the fixed project id the page loads.
func (c *Controller) ProjectID() string { return c.projectID }

// Navigate starts a new load cycle and issues the three collaborator calls
// concurrently. Results from earlier cycles that settle later are discarded.
func (c *Controller) Navigate(ctx context.Context) viewstate.Cycle {
	cycle := c.holder.Begin()
	settled := make(chan struct{})
	src := c.src
	// In-flight fetches are never cancelled; a superseded cycle's results are discarded instead.
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	c.settled = settled
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		project, err := src.FetchMyProject(ctx, c.projectID)
		return c.settle(ctx, cycle, "my_project", start, err, func(d *Data) { d.Project = project }, haveProject)
	})
	g.Go(func() error {
		start := time.Now()
		feeds, err := src.FetchFeeds(ctx)
		return c.settle(ctx, cycle, "feeds", start, err, func(d *Data) { d.Feeds = feeds }, haveFeeds)
	})
	g.Go(func() error {
		start := time.Now()
		experiments, err := src.FetchRunningExperiments(ctx)
		return c.settle(ctx, cycle, "running_experiments", start, err, func(d *Data) { d.Experiments = experiments }, haveExperiments)
	})

	go func() {
		defer close(settled)
		if err := g.Wait(); err != nil {
			c.logger.Debug(ctx, "load cycle finished with failures", logger.Uint64("cycle", uint64(cycle)), logger.Error(err))
		}
	}()

	return cycle
}

func (c *Controller) settle(ctx context.Context, cycle viewstate.Cycle, call string, start time.Time, err error, apply func(*Data), part uint8) error {
	elapsed := time.Since(start)
	metrics.RecordFetch(call, float64(elapsed.Milliseconds()), err)

	if err != nil {
		if c.holder.Fail(cycle, err) {
			c.logger.Warn(ctx, "overview load failed",
				logger.String("call", call), logger.Duration("elapsed_ms", elapsed), logger.Error(err))
		} else {
			metrics.RecordDiscardedSettlement(PageName)
		}
		return err
	}

	committed := c.holder.Apply(cycle, func(d *Data) bool {
		apply(d)
		return d.mark(part)
	})
	if !committed {
		metrics.RecordDiscardedSettlement(PageName)
		c.logger.Debug(ctx, "discarded settlement", logger.String("call", call),
			logger.Uint64("cycle", uint64(cycle)), logger.Uint64("current_cycle", uint64(c.holder.Current())))
	}
	return nil
}

// Wait blocks until the current cycle is ready or failed, or ctx is done.
func (c *Controller) Wait(ctx context.Context) viewstate.State[Data] {
	return c.holder.Wait(ctx)
}

// Drain blocks until every call of the current cycle has returned, or ctx is done.
func (c *Controller) Drain(ctx context.Context) {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()

	if settled == nil {
		return
	}
	select {
	case <-settled:
	case <-ctx.Done():
	}
}

// State returns the current view state.
func (c *Controller) State() viewstate.State[Data] {
	return c.holder.State()
}
