// Package config defines engine configuration structures and loading hooks.
//
// Every tunable the engine exposes (TTLs, cache ceilings, match threshold,
// probe and dwell timings) is a named field here rather than a constant in
// the algorithm body.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9084".
	Addr string `koanf:"addr"`

	// ServerBase is the catalog base URL; a comma-separated list is allowed
	// and each base expands into several candidate roots.
	ServerBase string `koanf:"server_base"`

	// CacheDir is the directory backing the byte cache.
	CacheDir string `koanf:"cache_dir"`

	// FlushCacheOnStart drops every cached entry during startup.
	FlushCacheOnStart bool `koanf:"flush_cache_on_start"`

	// Cache ceilings enforced by pruning.
	CacheMaxEntries int   `koanf:"cache_max_entries"`
	CacheMaxBytes   int64 `koanf:"cache_max_bytes"`
	CacheMaxAgeMS   int   `koanf:"cache_max_age_ms"`

	// Per-class freshness windows. The catalog listing changes rarely;
	// leaderboard documents change often.
	CatalogTTLMS int `koanf:"catalog_ttl_ms"`
	TitleTTLMS   int `koanf:"title_ttl_ms"`

	// HTTPTimeoutMS bounds each blocking GET.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// Probe pacing: spacing between candidate attempts and the initial
	// backoff applied after a fully exhausted candidate cycle.
	ProbeSpacingMS int `koanf:"probe_spacing_ms"`
	ProbeBackoffMS int `koanf:"probe_backoff_ms"`

	// AcceptScore is the minimum fuzzy-match score for resolution.
	AcceptScore int `koanf:"accept_score"`

	// MaxDiagnostics bounds the retained near-miss list.
	MaxDiagnostics int `koanf:"max_diagnostics"`

	// TickIntervalMS is the host loop cadence; StepIntervalMS is the
	// minimum spacing between network-touching pipeline steps.
	TickIntervalMS int `koanf:"tick_interval_ms"`
	StepIntervalMS int `koanf:"step_interval_ms"`

	// Render schedule tunables.
	ScrollIntervalMS int `koanf:"scroll_interval_ms"`
	ScrollStep       int `koanf:"scroll_step"`
	FreezeMS         int `koanf:"freeze_ms"`
	BoardDwellMS     int `koanf:"board_dwell_ms"`
	VariantDwellMS   int `koanf:"variant_dwell_ms"`
	HoldMS           int `koanf:"hold_ms"`

	// MaxRowsPerBoard is the soft row cap; zero means unlimited.
	MaxRowsPerBoard int `koanf:"max_rows_per_board"`

	// Display window geometry, in pixels, used to decide when the last row
	// has scrolled out of view.
	ScreenHeight int `koanf:"screen_height"`
	LineHeight   int `koanf:"line_height"`
	FontAscent   int `koanf:"font_ascent"`
	ContentTop   int `koanf:"content_top"`

	// MaxLineChars truncates rendered row text; zero disables truncation.
	MaxLineChars int `koanf:"max_line_chars"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9084",
		ServerBase:        "http://darkone83.myddns.me:8080/xbox",
		CacheDir:          "insignia-cache",
		FlushCacheOnStart: false,
		CacheMaxEntries:   32,
		CacheMaxBytes:     128 * 1024,
		CacheMaxAgeMS:     6 * 60 * 60 * 1000,
		CatalogTTLMS:      6 * 60 * 60 * 1000,
		TitleTTLMS:        2 * 60 * 1000,
		HTTPTimeoutMS:     1200,
		ProbeSpacingMS:    200,
		ProbeBackoffMS:    2000,
		AcceptScore:       65,
		MaxDiagnostics:    10,
		TickIntervalMS:    25,
		StepIntervalMS:    100,
		ScrollIntervalMS:  40,
		ScrollStep:        1,
		FreezeMS:          750,
		BoardDwellMS:      3000,
		VariantDwellMS:    12000,
		HoldMS:            15000,
		MaxRowsPerBoard:   0,
		ScreenHeight:      64,
		LineHeight:        9,
		FontAscent:        7,
		ContentTop:        16,
		MaxLineChars:      42,
	}
}
