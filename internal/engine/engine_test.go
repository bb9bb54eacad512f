package engine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/darkone83/insignia-board/internal/adapters/cache"
	"github.com/darkone83/insignia-board/internal/adapters/catalog"
	"github.com/darkone83/insignia-board/internal/engine"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeClock steps time manually so every engine timer is deterministic.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTitleServer(catalogJSON string, titles map[string]string) (*httptest.Server, *int) {
	titleHits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data/search.json" {
			w.Write([]byte(catalogJSON))
			return
		}
		if strings.HasPrefix(r.URL.Path, "/data/by_id/") {
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/data/by_id/"), ".json")
			if doc, ok := titles[id]; ok {
				titleHits++
				w.Write([]byte(doc))
				return
			}
		}
		http.NotFound(w, r)
	}))
	return srv, &titleHits
}

func newEngine(t *testing.T, base string, clock *fakeClock, opts ...engine.Option) *engine.Engine {
	t.Helper()
	store, err := cache.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	// Title freshness at zero TTL forces a real fetch on every load, so
	// variant rotation is observable at the server.
	client := catalog.NewClient(store, catalog.WithTitleTTL(time.Nanosecond))
	probe := catalog.NewProbe(client, base)
	all := append([]engine.Option{
		engine.WithClock(clock),
		engine.WithStepInterval(100 * time.Millisecond),
		engine.WithScrollCadence(40*time.Millisecond, 9),
		engine.WithFreeze(750 * time.Millisecond),
		engine.WithBoardDwell(3 * time.Second),
		engine.WithVariantDwell(12 * time.Second),
	}, opts...)
	return engine.New(client, probe, store, all...)
}

// tick drives n engine ticks, advancing the clock one step interval each.
func tick(ctx context.Context, eng *engine.Engine, clock *fakeClock, n int) {
	for i := 0; i < n; i++ {
		eng.Tick(ctx)
		clock.Advance(100 * time.Millisecond)
	}
}

const goodDoc = `{"game_title":"Great Game","scoreboards":[{
	"name":"High Scores",
	"columns":["rank","name","score"],
	"rows":[
		{"rank":"1","name":"alice","score":300},
		{"rank":"2","name":"bob","score":200},
		{"rank":"3","name":"carol","score":100}
	]}]}`

func TestEngine_Pipeline(t *testing.T) {
	Convey("Given a reachable catalog with one title", t, func() {
		ctx := context.Background()
		catalogJSON := `[{"title_id":"T1","name":"Great Game","slug":"great-game"}]`
		srv, _ := newTitleServer(catalogJSON, map[string]string{"T1": goodDoc})
		defer srv.Close()

		clock := &fakeClock{now: time.Now()}
		eng := newEngine(t, srv.URL, clock)

		Convey("When no query is set", func() {
			tick(ctx, eng, clock, 3)
			So(eng.Active(), ShouldBeFalse)
			f := eng.Frame()
			So(f.Active, ShouldBeFalse)
			So(f.Header, ShouldEqual, "")
		})

		Convey("When a query is set", func() {
			eng.SetQuery("Great Game")

			Convey("Then probe, resolve and load land on separate ticks", func() {
				tick(ctx, eng, clock, 1)
				So(eng.Active(), ShouldBeFalse)
				tick(ctx, eng, clock, 1)
				So(eng.Active(), ShouldBeFalse)
				tick(ctx, eng, clock, 1)
				So(eng.Active(), ShouldBeTrue)
			})

			Convey("And the frame reflects the loaded board", func() {
				tick(ctx, eng, clock, 3)
				f := eng.Frame()
				So(f.Active, ShouldBeTrue)
				So(f.Header, ShouldEqual, "Great Game")
				So(f.Board, ShouldEqual, "High Scores")
				So(f.Rows, ShouldContain, "1. alice  300")
				So(f.HoldMS, ShouldEqual, int64(15000))
			})

			Convey("And re-setting the same query keeps the state", func() {
				tick(ctx, eng, clock, 3)
				eng.SetQuery("  Great Game  ")
				So(eng.Active(), ShouldBeTrue)
			})

			Convey("And a changed query resets but keeps the root", func() {
				tick(ctx, eng, clock, 3)
				eng.SetQuery("Other Name")
				So(eng.Active(), ShouldBeFalse)
				So(len(eng.Diagnostics()), ShouldEqual, 0)
			})
		})
	})
}

func TestEngine_Schedule(t *testing.T) {
	Convey("Given a loaded three-row board", t, func() {
		ctx := context.Background()
		catalogJSON := `[{"title_id":"T1","name":"Great Game","slug":"great-game"}]`
		srv, _ := newTitleServer(catalogJSON, map[string]string{"T1": goodDoc})
		defer srv.Close()

		clock := &fakeClock{now: time.Now()}
		eng := newEngine(t, srv.URL, clock)
		eng.SetQuery("Great Game")
		tick(ctx, eng, clock, 3)
		So(eng.Active(), ShouldBeTrue)

		Convey("When ticking inside the freeze window", func() {
			before := eng.Frame().Rows
			tick(ctx, eng, clock, 2)
			So(eng.Frame().Rows, ShouldResemble, before)
		})

		Convey("When the freeze window has passed", func() {
			So(len(eng.Frame().Rows), ShouldEqual, 2)
			clock.Advance(800 * time.Millisecond)
			eng.Tick(ctx)

			Convey("Then the board scrolls one line", func() {
				rows := eng.Frame().Rows
				So(len(rows), ShouldEqual, 3)
				So(rows[2], ShouldEqual, "3. carol  100")
			})
		})

		Convey("When the last row scrolls out after the dwell", func() {
			// Scroll far enough in a handful of ticks for the last row to
			// leave the content area, then pass the dwell threshold.
			clock.Advance(3100 * time.Millisecond)
			for i := 0; i < 7; i++ {
				eng.Tick(ctx)
				clock.Advance(50 * time.Millisecond)
			}

			Convey("Then the board restarts from the top", func() {
				rows := eng.Frame().Rows
				So(len(rows), ShouldEqual, 2)
				So(rows[0], ShouldEqual, "1. alice  300")
			})
		})
	})
}

func TestEngine_Variants(t *testing.T) {
	Convey("Given a title with a broken regional sibling", t, func() {
		ctx := context.Background()
		catalogJSON := `[
			{"title_id":"T1","name":"Great Game (USA)","slug":"great-game-usa"},
			{"title_id":"T2","name":"Great Game","slug":"great-game"}
		]`
		srv, _ := newTitleServer(catalogJSON, map[string]string{
			"T1": `{"game_title":"Broken","scoreboards":[]}`,
			"T2": goodDoc,
		})
		defer srv.Close()

		clock := &fakeClock{now: time.Now()}
		eng := newEngine(t, srv.URL, clock)
		eng.SetQuery("Great Game")

		Convey("When the pipeline runs long enough", func() {
			tick(ctx, eng, clock, 6)

			Convey("Then the usable sibling ends up loaded", func() {
				So(eng.Active(), ShouldBeTrue)
				So(eng.Frame().Header, ShouldEqual, "Great Game")
			})
		})
	})

	Convey("Given a pool of two healthy variants", t, func() {
		ctx := context.Background()
		catalogJSON := `[
			{"title_id":"T1","name":"Great Game (USA)","slug":"great-game-usa"},
			{"title_id":"T2","name":"Great Game","slug":"great-game"}
		]`
		srv, titleHits := newTitleServer(catalogJSON, map[string]string{
			"T1": goodDoc,
			"T2": goodDoc,
		})
		defer srv.Close()

		clock := &fakeClock{now: time.Now()}
		eng := newEngine(t, srv.URL, clock, engine.WithVariantDwell(2*time.Second))
		eng.SetQuery("Great Game")
		tick(ctx, eng, clock, 3)
		So(eng.Active(), ShouldBeTrue)
		loads := *titleHits

		Convey("When the variant dwell and a board cycle elapse", func() {
			clock.Advance(3100 * time.Millisecond)
			for i := 0; i < 7; i++ {
				eng.Tick(ctx)
				clock.Advance(50 * time.Millisecond)
			}

			Convey("Then the sibling variant is fetched and loaded", func() {
				clock.Advance(200 * time.Millisecond)
				tick(ctx, eng, clock, 2)
				So(eng.Active(), ShouldBeTrue)
				So(*titleHits, ShouldBeGreaterThan, loads)
			})
		})
	})
}

func TestEngine_RowFormatting(t *testing.T) {
	Convey("Given rows with extras and missing names", t, func() {
		ctx := context.Background()
		catalogJSON := `[{"title_id":"T1","name":"Great Game","slug":"great-game"}]`
		doc := `{"game_title":"Great Game","scoreboards":[{
			"columns":["rank","name","score","region"],
			"rows":[
				{"rank":"1","name":"alice","score":300,"region":"eu"},
				{"rank":"2","score":10}
			]}]}`
		srv, _ := newTitleServer(catalogJSON, map[string]string{"T1": doc})
		defer srv.Close()

		clock := &fakeClock{now: time.Now()}

		Convey("When rendered without truncation", func() {
			eng := newEngine(t, srv.URL, clock)
			eng.SetQuery("Great Game")
			tick(ctx, eng, clock, 3)
			rows := eng.Frame().Rows
			So(rows, ShouldContain, "1. alice  300  · region=eu")
			So(rows, ShouldContain, "2. —  10")
		})

		Convey("When rendered with a tight line limit", func() {
			eng := newEngine(t, srv.URL, clock, engine.WithMaxLineChars(8))
			eng.SetQuery("Great Game")
			tick(ctx, eng, clock, 3)
			rows := eng.Frame().Rows
			So(rows, ShouldContain, "1. alice")
		})
	})
}
