package resolve

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithAcceptScore sets the minimum score a candidate must reach to be
// accepted. The default is tuned empirically against the live catalog.
func WithAcceptScore(score int) Option {
	return func(r *Resolver) {
		if score > 0 {
			r.acceptScore = score
		}
	}
}

// WithMaxDiagnostics bounds the near-miss list retained per resolution.
func WithMaxDiagnostics(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDiagnostics = n
		}
	}
}

// WithGenericWords sets the marketplace words that make a label generic.
// A candidate consisting only of these words is penalized unless the query
// leads with the first of them.
func WithGenericWords(words []string) Option {
	return func(r *Resolver) {
		if len(words) > 0 {
			r.genericWords = words
		}
	}
}
