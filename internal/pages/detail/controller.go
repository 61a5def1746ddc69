// Package detail implements the marketplace item detail page.
//
// The page loads one sample project keyed by the id query parameter. A failed fetch
// is logged and counted but never rendered: the page keeps showing the loading
// indicator for that cycle.
package detail

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/okian/projdash/internal/domain/model"
	"github.com/okian/projdash/internal/domain/viewstate"
	"github.com/okian/projdash/internal/pages/routes"
	"github.com/okian/projdash/pkg/logger"
	"github.com/okian/projdash/pkg/metrics"
)

// PageName labels this page in logs and metrics.
const PageName = "detail"

// Fetcher loads a marketplace sample project.
type Fetcher interface {
	FetchSampleProject(ctx context.Context, id string) (model.ProjectSummary, error)
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller drives the detail page's load cycles.
type Controller struct {
	fetcher Fetcher
	holder  *viewstate.Holder[model.ProjectSummary]
	logger  logger.Logger

	mu      sync.Mutex
	id      string
	navSeen bool
	done    chan struct{}
}

// New constructs a Controller reading from f.
func New(f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: f,
		holder:  viewstate.NewHolder[model.ProjectSummary](),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Navigate reacts to a route change. A valid id different from the current one starts
// a new cycle with exactly one fetch; the same id again is a no-op. A missing or
// non-string id starts a cycle without any fetch, leaving the page loading.
func (c *Controller) Navigate(ctx context.Context, query url.Values) {
	id, ok := routes.QueryID(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.navSeen && id == c.id {
		return
	}
	c.navSeen = true
	c.id = id

	cycle := c.holder.Begin()
	done := make(chan struct{})
	c.done = done

	if !ok {
		c.logger.Debug(ctx, "no usable id in route; nothing to fetch", logger.Bool("id_present", query.Has("id")))
		close(done)
		return
	}

	// In-flight fetches outlive the navigation that started them.
	go c.load(context.WithoutCancel(ctx), cycle, id, done)
}

func (c *Controller) load(ctx context.Context, cycle viewstate.Cycle, id string, done chan struct{}) {
	defer close(done)

	start := time.Now()
	project, err := c.fetcher.FetchSampleProject(ctx, id)
	elapsed := time.Since(start)
	metrics.RecordFetch("sample_project", float64(elapsed.Milliseconds()), err)

	if err != nil {
		metrics.RecordSwallowedFailure(PageName)
		c.logger.Warn(ctx, "sample project fetch failed; page stays loading",
			logger.String("id", id), logger.Duration("elapsed_ms", elapsed), logger.Error(err))
		return
	}

	committed := c.holder.Apply(cycle, func(dst *model.ProjectSummary) bool {
		*dst = project
		return true
	})
	if !committed {
		metrics.RecordDiscardedSettlement(PageName)
		c.logger.Debug(ctx, "discarded stale sample project", logger.String("id", id),
			logger.Uint64("cycle", uint64(cycle)), logger.Uint64("current_cycle", uint64(c.holder.Current())))
	}
}

// Wait blocks until the current cycle's fetch has settled or ctx is done, then
// returns the view state.
func (c *Controller) Wait(ctx context.Context) viewstate.State[model.ProjectSummary] {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return c.holder.State()
}

// State returns the current view state.
func (c *Controller) State() viewstate.State[model.ProjectSummary] {
	return c.holder.State()
}
