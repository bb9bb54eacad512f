package board

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithMaxRows sets the soft per-board row cap. Zero means unlimited; the
// hard safety cap still applies.
func WithMaxRows(n int) Option {
	return func(p *Parser) {
		if n >= 0 {
			p.maxRows = n
		}
	}
}

// WithRankAliases replaces the case-insensitive rank column aliases.
func WithRankAliases(aliases []string) Option {
	return func(p *Parser) {
		if len(aliases) > 0 {
			p.rankAliases = aliases
		}
	}
}

// WithNameAliases replaces the case-insensitive name column aliases.
func WithNameAliases(aliases []string) Option {
	return func(p *Parser) {
		if len(aliases) > 0 {
			p.nameAliases = aliases
		}
	}
}

// WithMetricPreference replaces the ordered metric key preference list.
func WithMetricPreference(keys []string) Option {
	return func(p *Parser) {
		if len(keys) > 0 {
			p.metricPreference = keys
		}
	}
}
