package resolve_test

import (
	"testing"

	"github.com/darkone83/insignia-board/internal/domain/resolve"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver_Resolve(t *testing.T) {
	Convey("Given a resolver with default tuning", t, func() {
		r := resolve.New()

		Convey("When the query is empty", func() {
			_, _, err := r.Resolve("   ", []byte(`[]`))
			So(err, ShouldEqual, resolve.ErrEmptyQuery)
		})

		Convey("When the catalog is not valid JSON", func() {
			_, _, err := r.Resolve("halo", []byte(`{not json`))
			So(err, ShouldWrap, resolve.ErrBadCatalog)
		})

		Convey("When an entry matches the name exactly", func() {
			catalog := []byte(`[
				{"title_id":"A","name":"Foo","slug":"foo"},
				{"title_id":"B","name":"Foobar","slug":"foobar"}
			]`)
			res, diags, err := r.Resolve("Foo", catalog)
			So(err, ShouldBeNil)
			So(res.TitleID, ShouldEqual, "A")
			So(res.Score, ShouldEqual, 100)
			So(res.Reason, ShouldEqual, "exact name")
			So(res.Pool, ShouldResemble, []string{"A"})
			So(len(diags), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("When only the normalized name matches", func() {
			catalog := []byte(`[{"title_id":"H2","name":"Halo 2","slug":"halo-2"}]`)
			res, _, err := r.Resolve("Halo II", catalog)
			So(err, ShouldBeNil)
			So(res.TitleID, ShouldEqual, "H2")
			So(res.Score, ShouldEqual, 93)
			So(res.Reason, ShouldEqual, "norm(name)")
		})

		Convey("When the lowercase alias matches", func() {
			catalog := []byte(`[{"title_id":"C","name":"Crazy Taxi!!","name_lc":"crazy taxi","slug":"crazy-taxi-3"}]`)
			res, _, err := r.Resolve("crazy taxi", catalog)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 98)
			So(res.Reason, ShouldEqual, "exact name_lc")
		})

		Convey("When the winner has regional siblings", func() {
			catalog := []byte(`[
				{"title_id":"S0","name":"Speed Racer","slug":"speed-racer"},
				{"title_id":"S1","name":"Speed Racer (USA)","slug":"speed-racer-usa"},
				{"title_id":"S2","name":"Speed Racer (Europe)","slug":"speed-racer-europe"},
				{"title_id":"O1","name":"Other Game","slug":"other-game"}
			]`)
			res, _, err := r.Resolve("Speed Racer", catalog)
			So(err, ShouldBeNil)
			So(res.TitleID, ShouldEqual, "S0")
			So(res.FamilyKey, ShouldEqual, "speedracer")
			So(res.Pool, ShouldResemble, []string{"S0", "S1", "S2"})
		})

		Convey("When no candidate shares any semantic overlap", func() {
			catalog := []byte(`[{"title_id":"P","name":"Pirates!","slug":"pirates"}]`)
			res, diags, err := r.Resolve("Zelda", catalog)
			So(err, ShouldEqual, resolve.ErrNoMatch)
			So(res, ShouldBeNil)
			// The hard gate zeroes the score, so nothing is diagnosed either.
			So(diags, ShouldBeEmpty)
		})

		Convey("When the best candidate scores below the threshold", func() {
			catalog := []byte(`[{"title_id":"H2","name":"Halo 2","slug":"halo-2"}]`)
			res, diags, err := r.Resolve("halo", catalog)
			So(err, ShouldEqual, resolve.ErrNoMatch)
			So(res, ShouldBeNil)
			So(len(diags), ShouldEqual, 1)
			So(diags[0].ID, ShouldEqual, "H2")
			So(diags[0].Score, ShouldBeBetween, 0, 65)
		})

		Convey("When a generic storefront label competes", func() {
			lenient := resolve.New(resolve.WithAcceptScore(20))
			catalog := []byte(`[{"title_id":"LA","name":"Live Arcade","slug":"live-arcade"}]`)

			Convey("Then it is penalized for unrelated queries", func() {
				res, _, err := lenient.Resolve("Blitz Arcade", catalog)
				So(err, ShouldEqual, resolve.ErrNoMatch)
				So(res, ShouldBeNil)
			})

			Convey("And it survives when the query leads with a generic word", func() {
				res, _, err := lenient.Resolve("Arcade Live", catalog)
				So(err, ShouldBeNil)
				So(res.TitleID, ShouldEqual, "LA")
			})
		})

		Convey("When entries have no title id", func() {
			catalog := []byte(`[{"title_id":"","name":"Ghost"},{"title_id":"G","name":"Ghost","slug":"ghost"}]`)
			res, _, err := r.Resolve("Ghost", catalog)
			So(err, ShouldBeNil)
			So(res.TitleID, ShouldEqual, "G")
		})
	})

	Convey("Given a resolver with custom tuning", t, func() {
		Convey("When the accept threshold is lowered", func() {
			r := resolve.New(resolve.WithAcceptScore(40))
			catalog := []byte(`[{"title_id":"H2","name":"Halo 2","slug":"halo-2"}]`)
			res, _, err := r.Resolve("halo", catalog)
			So(err, ShouldBeNil)
			So(res.TitleID, ShouldEqual, "H2")
		})

		Convey("When the diagnostics list is bounded", func() {
			r := resolve.New(resolve.WithAcceptScore(100), resolve.WithMaxDiagnostics(2))
			catalog := []byte(`[
				{"title_id":"A","name":"Race One","slug":"race-one"},
				{"title_id":"B","name":"Race Two","slug":"race-two"},
				{"title_id":"C","name":"Race Three","slug":"race-three"},
				{"title_id":"D","name":"Race Four","slug":"race-four"}
			]`)
			_, diags, err := r.Resolve("Race", catalog)
			So(err, ShouldEqual, resolve.ErrNoMatch)
			So(len(diags), ShouldEqual, 2)
		})
	})
}
