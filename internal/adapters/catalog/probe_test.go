package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/darkone83/insignia-board/internal/adapters/cache"
	"github.com/darkone83/insignia-board/internal/adapters/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCandidateRoots(t *testing.T) {
	Convey("Given base configuration strings", t, func() {
		Convey("When the base is a plain URL", func() {
			So(catalog.CandidateRoots("http://h:8080/xbox"), ShouldResemble, []string{
				"http://h:8080/xbox",
				"http://h:8080/xbox/xbox",
				"http://h:8080/xbox/xbox/data",
			})
		})

		Convey("When the base ends in /data", func() {
			So(catalog.CandidateRoots("http://h/data"), ShouldResemble, []string{
				"http://h/data",
				"http://h",
				"http://h/data/xbox",
				"http://h/data/xbox/data",
			})
		})

		Convey("When the base has a trailing slash", func() {
			So(catalog.CandidateRoots("http://h/"), ShouldResemble, []string{
				"http://h",
				"http://h/xbox",
				"http://h/xbox/data",
			})
		})

		Convey("When the base is a comma-separated list with duplicates", func() {
			roots := catalog.CandidateRoots("http://a, http://a/, http://b")
			So(roots, ShouldResemble, []string{
				"http://a", "http://a/xbox", "http://a/xbox/data",
				"http://b", "http://b/xbox", "http://b/xbox/data",
			})
		})

		Convey("When the base is empty", func() {
			So(catalog.CandidateRoots("  "), ShouldBeEmpty)
		})
	})
}

func TestProbe_Step(t *testing.T) {
	Convey("Given a reachable catalog root", t, func() {
		ctx := context.Background()
		store, _ := newTestStore(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/data/search.json" {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := catalog.NewClient(store)
		probe := catalog.NewProbe(client, srv.URL)

		Convey("When stepping once", func() {
			So(probe.Step(ctx), ShouldBeTrue)
			root, ok := probe.Root()
			So(ok, ShouldBeTrue)
			So(root, ShouldEqual, srv.URL)

			Convey("Then later steps are no-ops", func() {
				So(probe.Step(ctx), ShouldBeTrue)
			})

			Convey("And Reset forgets the root", func() {
				probe.Reset()
				_, ok := probe.Root()
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given no candidate answers", t, func() {
		ctx := context.Background()
		store, _ := newTestStore(t)
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			http.NotFound(w, r)
		}))
		defer srv.Close()

		now := time.Now()
		clock := func() time.Time { return now }
		client := catalog.NewClient(store)
		probe := catalog.NewProbe(client, srv.URL,
			catalog.WithSpacing(200*time.Millisecond),
			catalog.WithBackoff(500*time.Millisecond),
			catalog.WithProbeClock(clock),
		)

		Convey("When stepping twice without advancing the clock", func() {
			So(probe.Step(ctx), ShouldBeFalse)
			So(probe.Step(ctx), ShouldBeFalse)

			Convey("Then only one attempt is made", func() {
				So(attempts, ShouldEqual, 1)
			})
		})

		Convey("When stepping through the whole candidate list", func() {
			for i := 0; i < 3; i++ {
				So(probe.Step(ctx), ShouldBeFalse)
				now = now.Add(250 * time.Millisecond)
			}
			So(attempts, ShouldEqual, 3)

			Convey("Then the next step backs off without touching the network", func() {
				So(probe.Step(ctx), ShouldBeFalse)
				So(attempts, ShouldEqual, 3)
			})

			Convey("And the list restarts after the backoff elapses", func() {
				So(probe.Step(ctx), ShouldBeFalse)
				now = now.Add(10 * time.Second)
				So(probe.Step(ctx), ShouldBeFalse)
				So(attempts, ShouldEqual, 4)
			})
		})
	})

	Convey("Given a stale cached catalog for the base root", t, func() {
		ctx := context.Background()
		store, _ := newTestStore(t)
		base := "http://cached.example"
		key := cache.Key(base + "/data/search.json")
		So(store.Write(ctx, key, []byte(`[]`)), ShouldBeNil)

		client := catalog.NewClient(store)
		probe := catalog.NewProbe(client, base)

		Convey("When stepping while the network is unavailable", func() {
			So(probe.Step(ctx), ShouldBeTrue)
			root, ok := probe.Root()
			So(ok, ShouldBeTrue)
			So(root, ShouldEqual, base)
		})
	})
}
