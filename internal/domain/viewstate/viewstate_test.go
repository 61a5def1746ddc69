package viewstate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/projdash/internal/domain/viewstate"
	. "github.com/smartystreets/goconvey/convey"
)

type pair struct {
	left, right         string
	haveLeft, haveRight bool
}

func setLeft(v string) func(*pair) bool {
	return func(p *pair) bool {
		p.left, p.haveLeft = v, true
		return p.haveLeft && p.haveRight
	}
}

func setRight(v string) func(*pair) bool {
	return func(p *pair) bool {
		p.right, p.haveRight = v, true
		return p.haveLeft && p.haveRight
	}
}

func TestState(t *testing.T) {
	Convey("Given the state constructors", t, func() {
		Convey("Then loading carries nothing", func() {
			st := viewstate.Loading[int]()
			So(st.Kind(), ShouldEqual, viewstate.KindLoading)
			_, ok := st.Value()
			So(ok, ShouldBeFalse)
			_, ok = st.Message()
			So(ok, ShouldBeFalse)
		})

		Convey("And failed carries only the message", func() {
			st := viewstate.Failed[int]("network down")
			msg, ok := st.Message()
			So(ok, ShouldBeTrue)
			So(msg, ShouldEqual, "network down")
			_, ok = st.Value()
			So(ok, ShouldBeFalse)
		})

		Convey("And ready carries the payload", func() {
			st := viewstate.Ready(42)
			v, ok := st.Value()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 42)
			So(st.Kind().String(), ShouldEqual, "ready")
		})
	})
}

func TestHolder(t *testing.T) {
	Convey("Given a holder for a two-part payload", t, func() {
		h := viewstate.NewHolder[pair]()
		c := h.Begin()

		Convey("When only one part resolves", func() {
			So(h.Apply(c, setLeft("a")), ShouldBeTrue)

			Convey("Then the state stays loading", func() {
				So(h.State().Kind(), ShouldEqual, viewstate.KindLoading)
			})
		})

		Convey("When both parts resolve", func() {
			h.Apply(c, setRight("b"))
			h.Apply(c, setLeft("a"))

			Convey("Then the state is ready with both parts", func() {
				v, ok := h.State().Value()
				So(ok, ShouldBeTrue)
				So(v.left, ShouldEqual, "a")
				So(v.right, ShouldEqual, "b")
			})
		})

		Convey("When a part fails before the other resolves", func() {
			So(h.Fail(c, errors.New("network down")), ShouldBeTrue)
			So(h.Apply(c, setLeft("a")), ShouldBeFalse)
			So(h.Apply(c, setRight("b")), ShouldBeFalse)

			Convey("Then the error is latched", func() {
				msg, ok := h.State().Message()
				So(ok, ShouldBeTrue)
				So(msg, ShouldEqual, "network down")
				_, latched := h.Discarded()
				So(latched, ShouldEqual, 2)
			})
		})

		Convey("When a second failure arrives", func() {
			h.Fail(c, errors.New("first"))
			So(h.Fail(c, errors.New("second")), ShouldBeFalse)

			Convey("Then the first message wins", func() {
				msg, _ := h.State().Message()
				So(msg, ShouldEqual, "first")
			})
		})

		Convey("When a new cycle begins before the old one settles", func() {
			h.Apply(c, setLeft("old"))
			next := h.Begin()

			So(h.Apply(c, setRight("old")), ShouldBeFalse)
			So(h.Fail(c, errors.New("stale")), ShouldBeFalse)

			Convey("Then the new cycle is current", func() {
				So(h.Current(), ShouldEqual, next)
				So(next, ShouldNotEqual, c)
			})

			Convey("Then old settlements are discarded", func() {
				So(h.State().Kind(), ShouldEqual, viewstate.KindLoading)
				stale, _ := h.Discarded()
				So(stale, ShouldEqual, 2)
			})

			Convey("And the new cycle starts from an empty payload", func() {
				h.Apply(next, setRight("new"))
				So(h.State().Kind(), ShouldEqual, viewstate.KindLoading)
				h.Apply(next, setLeft("new"))
				v, ok := h.State().Value()
				So(ok, ShouldBeTrue)
				So(v.left, ShouldEqual, "new")
				So(v.right, ShouldEqual, "new")
			})
		})

		Convey("When a cycle that already failed is replaced", func() {
			h.Fail(c, errors.New("boom"))
			h.Begin()

			Convey("Then the state returns to loading", func() {
				So(h.State().Kind(), ShouldEqual, viewstate.KindLoading)
			})
		})
	})
}

func TestHolderWait(t *testing.T) {
	Convey("Given a holder with an open cycle", t, func() {
		h := viewstate.NewHolder[pair]()
		c := h.Begin()

		Convey("When the cycle settles while waiting", func() {
			go func() {
				time.Sleep(10 * time.Millisecond)
				h.Apply(c, setLeft("a"))
				h.Apply(c, setRight("b"))
			}()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			st := h.Wait(ctx)

			Convey("Then wait returns the ready state", func() {
				So(st.Kind(), ShouldEqual, viewstate.KindReady)
			})
		})

		Convey("When the context ends first", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			st := h.Wait(ctx)

			Convey("Then wait returns the loading state", func() {
				So(st.Kind(), ShouldEqual, viewstate.KindLoading)
			})
		})
	})
}
