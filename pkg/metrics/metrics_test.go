package metrics_test

import (
	"testing"

	"github.com/darkone83/insignia-board/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithPrometheusRegistry(reg))
		So(m, ShouldNotBeNil)

		Convey("When gathering", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)

			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}

			Convey("Then the engine metrics are registered", func() {
				So(names["insignia_board_cache_hits_total"], ShouldBeTrue)
				So(names["insignia_board_fetch_latency_milliseconds"], ShouldBeTrue)
				So(names["insignia_board_probe_attempts_total"], ShouldBeTrue)
				So(names["insignia_board_resolutions_total"], ShouldBeTrue)
				So(names["insignia_board_board_switches_total"], ShouldBeTrue)
				So(names["insignia_board_title_pool_size"], ShouldBeTrue)
			})
		})
	})

	Convey("Given a manager with a custom namespace", t, func() {
		reg := prometheus.NewRegistry()
		metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("custom"),
			metrics.WithSubsystem("engine"),
		)

		Convey("When gathering", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			found := false
			for _, f := range families {
				if f.GetName() == "custom_engine_cache_hits_total" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through the package functions", func() {
			So(func() {
				metrics.RecordCacheHit()
				metrics.RecordCacheMiss()
				metrics.RecordStaleServed()
				metrics.RecordFetchError()
				metrics.RecordFetchLatency(12.5)
				metrics.UpdateCacheEntries(3)
				metrics.UpdateCacheBytes(4096)
				metrics.RecordProbeAttempt()
				metrics.RecordRootDiscovered()
				metrics.RecordResolution()
				metrics.RecordResolutionFailure()
				metrics.RecordTitleLoad()
				metrics.RecordTitleLoadFailure()
				metrics.RecordBoardSwitch()
				metrics.RecordVariantSwitch()
				metrics.UpdateBoardsLoaded(2)
				metrics.UpdatePoolSize(2)
				metrics.RecordHTTPRequest("frame", "GET", "200")
				metrics.RecordHTTPRequestDuration("frame", "GET", "200", 1.5)
			}, ShouldNotPanic)
		})

		Convey("When reading the backing registry", func() {
			reg := metrics.GetRegistry()
			So(reg, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
