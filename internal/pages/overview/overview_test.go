package overview

import (
	"bytes"
	"context"
	"errors"
	"html"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/projdash/internal/domain/model"
	"github.com/okian/projdash/internal/domain/viewstate"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

type fakeSource struct {
	mu         sync.Mutex
	projectIDs []string

	project     model.ProjectSummary
	feeds       []model.FeedEntry
	experiments []model.ExperimentSummary

	projectErr, feedsErr, experimentsErr error

	// optional gates held until closed
	projectGate, feedsGate, experimentsGate chan struct{}
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate != nil {
		<-gate
	}
	return ctx.Err()
}

func (f *fakeSource) FetchMyProject(ctx context.Context, id string) (model.ProjectSummary, error) {
	f.mu.Lock()
	f.projectIDs = append(f.projectIDs, id)
	f.mu.Unlock()
	if err := wait(ctx, f.projectGate); err != nil {
		return model.ProjectSummary{}, err
	}
	return f.project, f.projectErr
}

func (f *fakeSource) FetchFeeds(ctx context.Context) ([]model.FeedEntry, error) {
	if err := wait(ctx, f.feedsGate); err != nil {
		return nil, err
	}
	return f.feeds, f.feedsErr
}

func (f *fakeSource) FetchRunningExperiments(ctx context.Context) ([]model.ExperimentSummary, error) {
	if err := wait(ctx, f.experimentsGate); err != nil {
		return nil, err
	}
	return f.experiments, f.experimentsErr
}

func loss(v float64) *float64 { return &v }

func sampleSource() *fakeSource {
	return &fakeSource{
		project: model.ProjectSummary{
			ID: "60ab72950fb5890a912f41fa", Name: "Celebrity Look-alike Recommender",
			Src: "/img/banner.jpg", TotalExperiments: 12, Deploy: model.NewNumber("3"),
		},
		feeds: []model.FeedEntry{
			{ID: "f1", Name: "acme", Experiment: "resnet-50", Message: "epoch 10 finished", Timestamp: "2 hours ago"},
			{ID: "f2", Name: "zeta", Experiment: "vit-b16", Message: "deployed", Timestamp: "1 day ago"},
		},
		experiments: []model.ExperimentSummary{
			{ID: "e1", Name: "resnet-50", Epoch: 10, TrainLoss: loss(0.21), ValidationLoss: loss(0.34), Score: model.NewNumber("0.91")},
			{ID: "e2", Name: "vit-b16", Epoch: 4, Score: model.NewScalar("pending")},
			{ID: "e3", Name: "mobilenet", Epoch: 1, Score: model.NewNumber("0.5")},
		},
	}
}

func waitCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Second)
}

func render(st viewstate.State[Data]) string {
	var buf bytes.Buffer
	So(Render(&buf, st), ShouldBeNil)
	return buf.String()
}

func TestControllerResolution(t *testing.T) {
	Convey("Given an overview controller", t, func() {
		src := sampleSource()
		ctrl := New(src)
		ctx, cancel := waitCtx()
		defer cancel()

		Convey("When all three collaborators resolve", func() {
			ctrl.Navigate(context.Background())
			st := ctrl.Wait(ctx)
			ctrl.Drain(ctx)

			Convey("Then the page is ready with every record", func() {
				data, ok := st.Value()
				So(ok, ShouldBeTrue)
				So(data.Project.Name, ShouldEqual, "Celebrity Look-alike Recommender")
				So(len(data.Feeds), ShouldEqual, 2)
				So(len(data.Experiments), ShouldEqual, 3)
			})

			Convey("And the fixed project id is requested", func() {
				So(src.projectIDs, ShouldResemble, []string{DefaultProjectID})
			})
		})

		Convey("When a custom project id is configured", func() {
			ctrl = New(src, WithProjectID("abc"))
			ctrl.Navigate(context.Background())
			ctrl.Wait(ctx)
			ctrl.Drain(ctx)

			So(ctrl.ProjectID(), ShouldEqual, "abc")
			So(src.projectIDs, ShouldResemble, []string{"abc"})
		})

		Convey("When feeds reject while the others are still in flight", func() {
			src.feedsErr = errors.New("network down")
			src.projectGate = make(chan struct{})
			src.experimentsGate = make(chan struct{})

			ctrl.Navigate(context.Background())
			st := ctrl.Wait(ctx)
			close(src.projectGate)
			close(src.experimentsGate)
			ctrl.Drain(ctx)

			Convey("Then the page latches that message", func() {
				msg, ok := st.Message()
				So(ok, ShouldBeTrue)
				So(msg, ShouldEqual, "network down")
			})

			Convey("And later successes do not clear the error", func() {
				final := ctrl.State()
				So(final.Kind(), ShouldEqual, viewstate.KindError)
				msg, _ := final.Message()
				So(msg, ShouldEqual, "network down")
				_, latched := ctrl.holder.Discarded()
				So(latched, ShouldEqual, 2)
			})
		})

		Convey("When two collaborators reject", func() {
			src.projectErr = errors.New("project missing")
			src.experimentsGate = make(chan struct{})
			src.experimentsErr = errors.New("experiments down")

			ctrl.Navigate(context.Background())
			st := ctrl.Wait(ctx)
			close(src.experimentsGate)
			ctrl.Drain(ctx)

			Convey("Then the first rejection wins", func() {
				msg, _ := st.Message()
				So(msg, ShouldEqual, "project missing")
				final, _ := ctrl.State().Message()
				So(final, ShouldEqual, "project missing")
			})
		})

		Convey("When the navigation context ends while calls are in flight", func() {
			src.feedsGate = make(chan struct{})
			navCtx, navCancel := context.WithCancel(context.Background())
			ctrl.Navigate(navCtx)
			navCancel()
			close(src.feedsGate)
			st := ctrl.Wait(ctx)
			ctrl.Drain(ctx)

			Convey("Then the calls are not cancelled and the page is ready", func() {
				So(st.Kind(), ShouldEqual, viewstate.KindReady)
			})
		})

		Convey("When one collaborator is still pending", func() {
			src.experimentsGate = make(chan struct{})
			ctrl.Navigate(context.Background())

			short, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer stop()
			st := ctrl.Wait(short)
			close(src.experimentsGate)
			ctrl.Drain(ctx)

			Convey("Then the page is still loading", func() {
				So(st.Kind(), ShouldEqual, viewstate.KindLoading)
			})
		})
	})
}

func TestControllerStaleCycle(t *testing.T) {
	Convey("Given a cycle abandoned while a call is in flight", t, func() {
		ctx, cancel := waitCtx()
		defer cancel()

		slow := sampleSource()
		slow.feedsGate = make(chan struct{})
		slow.feedsErr = errors.New("late failure")
		ctrl := New(slow)
		ctrl.Navigate(context.Background())

		// the next navigation sees a healthy collaborator
		ctrl.src = sampleSource()
		ctrl.Navigate(context.Background())
		st := ctrl.Wait(ctx)

		Convey("When the abandoned call finally rejects", func() {
			close(slow.feedsGate)
			deadline := time.Now().Add(time.Second)
			for time.Now().Before(deadline) {
				if stale, _ := ctrl.holder.Discarded(); stale >= 1 {
					break
				}
				time.Sleep(time.Millisecond)
			}

			Convey("Then the newer cycle stays ready", func() {
				So(st.Kind(), ShouldEqual, viewstate.KindReady)
				So(ctrl.State().Kind(), ShouldEqual, viewstate.KindReady)
				stale, _ := ctrl.holder.Discarded()
				So(stale, ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given overview view states", t, func() {
		src := sampleSource()
		ready := Data{Project: src.project, Feeds: src.feeds, Experiments: src.experiments}

		Convey("When loading", func() {
			out := render(viewstate.Loading[Data]())

			Convey("Then only the spinner is shown in the content area", func() {
				So(out, ShouldContainSubstring, `aria-label="loading"`)
				So(out, ShouldNotContainSubstring, "Total Experiments")
			})
		})

		Convey("When failed", func() {
			out := render(viewstate.Failed[Data]("network down"))

			Convey("Then exactly the message is shown", func() {
				So(out, ShouldContainSubstring, `<div class="page-error">network down</div>`)
				So(out, ShouldNotContainSubstring, `aria-label="loading"`)
				So(out, ShouldNotContainSubstring, "Running Experiments")
			})
		})

		Convey("When ready", func() {
			out := render(viewstate.Ready(ready))
			plain := html.UnescapeString(out)

			Convey("Then the header shows the banner, name and upload link", func() {
				So(out, ShouldContainSubstring, `src="/img/banner.jpg"`)
				So(out, ShouldContainSubstring, `<h1 class="text-3xl font-medium">Celebrity Look-alike Recommender</h1>`)
				So(out, ShouldContainSubstring, `href="/project/experiments/upload"`)
				So(out, ShouldContainSubstring, "New Experiment")
			})

			Convey("And the stat tiles are verbatim", func() {
				So(out, ShouldContainSubstring, `<dd class="stat-total">12</dd>`)
				So(out, ShouldContainSubstring, `<dd class="stat-deploy">3</dd>`)
			})

			Convey("And feeds render badges without touching the records", func() {
				So(out, ShouldContainSubstring, `<span class="badge">A</span>`)
				So(out, ShouldContainSubstring, `<span class="badge">Z</span>`)
				So(out, ShouldContainSubstring, "epoch 10 finished")
				So(out, ShouldContainSubstring, "2 hours ago")
				So(ready.Feeds[0].Name, ShouldEqual, "acme")
				So(strings.Count(out, `<li class="feed`), ShouldEqual, 2)
			})

			Convey("And the experiments table has one row per entry in order", func() {
				So(out, ShouldContainSubstring, "Running Experiments (3)")
				So(strings.Count(out, "<tr class=\"bg-"), ShouldEqual, 3)
				first := strings.Index(out, ">resnet-50</a>")
				second := strings.Index(out, ">vit-b16</a>")
				third := strings.Index(out, ">mobilenet</a>")
				So(first, ShouldBeGreaterThan, 0)
				So(second, ShouldBeGreaterThan, first)
				So(third, ShouldBeGreaterThan, second)
			})

			Convey("And rows are striped and link to deploy and details", func() {
				rows := strings.Split(out, "<tr class=\"")[1:]
				So(rows, ShouldHaveLength, 3)
				So(rows[0], ShouldStartWith, "bg-white")
				So(rows[1], ShouldStartWith, "bg-gray-50")
				So(rows[2], ShouldStartWith, "bg-white")
				So(plain, ShouldContainSubstring,
					`href="/project/experiments/deploy?projectId=60ab72950fb5890a912f41fa&projectName=Celebrity+Look-alike+Recommender"`)
				So(strings.Count(out, `href="/project/experiments/details"`), ShouldEqual, 3)
			})

			Convey("And missing losses render empty cells", func() {
				So(out, ShouldContainSubstring, `<td class="hidden sm:table-cell xl:hidden 2xl:table-cell">0.21</td>`)
				So(out, ShouldContainSubstring, "<td>pending</td>")
				So(out, ShouldContainSubstring, `<td class="hidden sm:table-cell xl:hidden 2xl:table-cell"></td>`)
			})

			Convey("And the sidebar lists the project navigation", func() {
				So(out, ShouldContainSubstring, SidebarTitle)
				So(out, ShouldContainSubstring, `href="/project/overview"`)
				So(out, ShouldContainSubstring, "<span>Settings</span>")
			})
		})

		Convey("When ready with empty sequences", func() {
			out := render(viewstate.Ready(Data{Project: src.project}))

			Convey("Then both placeholders are shown", func() {
				So(out, ShouldContainSubstring, "There is no feed yet!")
				So(out, ShouldContainSubstring, "There is no experiments yet!")
				So(out, ShouldNotContainSubstring, `<li class="feed`)
				So(out, ShouldNotContainSubstring, "<table")
				So(out, ShouldContainSubstring, `<h4 class="text-lg font-medium">Running Experiments</h4>`)
			})
		})
	})
}

func TestControllerDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := sampleSource()
	src.feedsErr = errors.New("network down")
	ctrl := New(src)
	ctrl.Navigate(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if st := ctrl.Wait(ctx); st.Kind() != viewstate.KindError {
		t.Fatalf("expected error state, got %s", st.Kind())
	}
	ctrl.Drain(ctx)
}
