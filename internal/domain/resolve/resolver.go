// Package resolve matches a free-text application name against the remote
// catalog and builds the pool of regional variants for the winning title.
package resolve

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/darkone83/insignia-board/internal/domain/textnorm"
)

// Default tuning. The point weights and the acceptance threshold are
// empirical; they were calibrated against the live catalog rather than
// derived, so treat them as defaults subject to recalibration.
const (
	defaultAcceptScore    = 65
	defaultMaxDiagnostics = 10

	tierExactName   = 100
	tierExactNameLC = 98
	tierExactSlug   = 95
	tierNormName    = 93
	tierNormSlug    = 91

	overlapPerToken = 12
	overlapCap      = 60
	firstTokenBonus = 25
	bigramScale     = 70

	shortNameLen     = 6
	shortNamePenalty = 20
	genericPenalty   = 35
)

// Entry is one row of the catalog listing.
type Entry struct {
	TitleID string `json:"title_id"`
	Name    string `json:"name"`
	NameLC  string `json:"name_lc"`
	Slug    string `json:"slug"`
}

// Diagnostic is a scored near-miss retained for operator troubleshooting.
type Diagnostic struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Result is an accepted resolution: the winning entry and its variant pool.
type Result struct {
	TitleID   string
	Name      string
	Slug      string
	FamilyKey string
	Score     int
	Reason    string

	// Pool holds the ordered, de-duplicated title ids sharing the winner's
	// family key. Never empty.
	Pool []string
}

// Resolver scores catalog entries against a query.
type Resolver struct {
	acceptScore    int
	maxDiagnostics int
	genericWords   []string
}

// New creates a Resolver with configuration options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		acceptScore:    defaultAcceptScore,
		maxDiagnostics: defaultMaxDiagnostics,
		genericWords:   []string{"xbox", "live", "arcade"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// candidate carries the per-entry normalized forms, computed once.
type candidate struct {
	entry      Entry
	normName   string
	normSlug   string
	nameTokens []string
	slugTokens []string
	familyKey  string
}

func newCandidate(e Entry) candidate {
	c := candidate{
		entry:      e,
		normName:   textnorm.NormKey(e.Name),
		normSlug:   textnorm.NormKey(e.Slug),
		nameTokens: textnorm.Tokenize(e.Name),
		slugTokens: textnorm.Tokenize(e.Slug),
	}
	c.familyKey = textnorm.FamilyKeyFromLabel(e.Name)
	if c.familyKey == "" {
		c.familyKey = textnorm.FamilyKeyFromSlug(e.Slug)
	}
	return c
}

// Resolve matches query against the raw catalog listing. The bounded
// diagnostics list is returned even when no entry is accepted.
func (r *Resolver) Resolve(query string, catalog []byte) (*Result, []Diagnostic, error) {
	queryNorm := textnorm.NormKey(query)
	if queryNorm == "" {
		return nil, nil, ErrEmptyQuery
	}
	qTokens := textnorm.Tokenize(query)
	qLower := strings.ToLower(strings.TrimSpace(query))

	var entries []Entry
	if err := json.Unmarshal(catalog, &entries); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadCatalog, err)
	}

	var (
		best      *candidate
		bestScore int
		bestWhy   string
		diags     []Diagnostic
	)
	cands := make([]candidate, 0, len(entries))
	for _, e := range entries {
		if e.TitleID == "" {
			continue
		}
		cands = append(cands, newCandidate(e))
	}

	for i := range cands {
		c := &cands[i]
		score, reason := r.score(c, qLower, queryNorm, qTokens)
		if score > 0 && len(diags) < r.maxDiagnostics {
			diags = append(diags, Diagnostic{
				ID: c.entry.TitleID, Name: c.entry.Name, Slug: c.entry.Slug,
				Score: score, Reason: reason,
			})
		}
		if score < r.acceptScore {
			continue
		}
		if best == nil || better(c, score, best, bestScore, queryNorm, qTokens) {
			best, bestScore, bestWhy = c, score, reason
		}
	}

	if best == nil {
		return nil, diags, ErrNoMatch
	}

	pool := familyPool(cands, best)
	return &Result{
		TitleID:   best.entry.TitleID,
		Name:      best.entry.Name,
		Slug:      best.entry.Slug,
		FamilyKey: best.familyKey,
		Score:     bestScore,
		Reason:    bestWhy,
		Pool:      pool,
	}, diags, nil
}

// score evaluates one candidate. Exact tiers short-circuit; otherwise the
// composite heuristic applies, followed by penalties and the hard gate.
func (r *Resolver) score(c *candidate, qLower, qNorm string, qTokens []string) (int, string) {
	e := c.entry
	var score int
	var reason string

	switch {
	case strings.EqualFold(e.Name, qLower):
		score, reason = tierExactName, "exact name"
	case e.NameLC != "" && e.NameLC == qLower:
		score, reason = tierExactNameLC, "exact name_lc"
	case strings.EqualFold(e.Slug, qLower):
		score, reason = tierExactSlug, "exact slug"
	case c.normName == qNorm:
		score, reason = tierNormName, "norm(name)"
	case c.normSlug == qNorm:
		score, reason = tierNormSlug, "norm(slug)"
	default:
		byName := tokenOverlapScore(qTokens, c.nameTokens) + firstTokenBoost(qTokens, c.nameTokens)
		bySlug := tokenOverlapScore(qTokens, c.slugTokens) + firstTokenBoost(qTokens, c.slugTokens)
		score = maxInt(byName, bySlug,
			bigramJaccardScore(qNorm, c.normName),
			bigramJaccardScore(qNorm, c.normSlug),
			containsBonus(qNorm, c.normName),
			containsBonus(qNorm, c.normSlug),
			containsBonus(c.normName, qNorm),
			containsBonus(c.normSlug, qNorm),
		)
		reason = "composite"

		// Short unrelated names inflate bigram similarity; penalize them
		// when the head token is not aligned.
		if firstTokenBoost(qTokens, c.nameTokens) == 0 && firstTokenBoost(qTokens, c.slugTokens) == 0 &&
			len(c.normName) <= shortNameLen {
			score -= shortNamePenalty
		}
		if r.isGenericLabel(c.nameTokens) {
			if len(qTokens) == 0 || !r.isGenericWord(qTokens[0]) {
				score -= genericPenalty
			}
		}
		if score < 0 {
			score = 0
		}
	}

	// Hard gate: require a shared exact token or substring containment in
	// either direction. Bigram overlap alone is not semantic overlap.
	if !sharesToken(qTokens, c.nameTokens) && !sharesToken(qTokens, c.slugTokens) &&
		!containsEither(qNorm, c.normName) && !containsEither(qNorm, c.normSlug) {
		return 0, ""
	}
	return score, reason
}

// better reports whether candidate a at score sa should displace b at sb.
// Ties break on normalized-length closeness to the query, then first-token
// alignment, then the shorter display name.
func better(a *candidate, sa int, b *candidate, sb int, qNorm string, qTokens []string) bool {
	if sa != sb {
		return sa > sb
	}
	da := absInt(len(a.normName) - len(qNorm))
	db := absInt(len(b.normName) - len(qNorm))
	if da != db {
		return da < db
	}
	af := len(qTokens) > 0 && len(a.nameTokens) > 0 && qTokens[0] == a.nameTokens[0]
	bf := len(qTokens) > 0 && len(b.nameTokens) > 0 && qTokens[0] == b.nameTokens[0]
	if af != bf {
		return af
	}
	return len(a.entry.Name) < len(b.entry.Name)
}

// familyPool collects the ids of every candidate sharing the winner's family
// key, ordered as listed, de-duplicated. Falls back to the winner alone.
func familyPool(cands []candidate, winner *candidate) []string {
	var pool []string
	seen := make(map[string]struct{})
	for i := range cands {
		c := &cands[i]
		if c.familyKey != winner.familyKey {
			continue
		}
		if _, dup := seen[c.entry.TitleID]; dup {
			continue
		}
		seen[c.entry.TitleID] = struct{}{}
		pool = append(pool, c.entry.TitleID)
	}
	if len(pool) == 0 {
		pool = []string{winner.entry.TitleID}
	}
	return pool
}

func tokenOverlapScore(qTokens, cTokens []string) int {
	if len(qTokens) == 0 || len(cTokens) == 0 {
		return 0
	}
	matches := 0
	for _, q := range qTokens {
		for _, c := range cTokens {
			if q == c {
				matches++
				break
			}
		}
	}
	s := matches * overlapPerToken
	if s > overlapCap {
		s = overlapCap
	}
	return s
}

func firstTokenBoost(qTokens, cTokens []string) int {
	if len(qTokens) > 0 && len(cTokens) > 0 && qTokens[0] == cTokens[0] {
		return firstTokenBonus
	}
	return 0
}

func (r *Resolver) isGenericWord(tok string) bool {
	for _, g := range r.genericWords {
		if tok == g {
			return true
		}
	}
	return false
}

func (r *Resolver) isGenericLabel(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !r.isGenericWord(t) {
			return false
		}
	}
	return true
}

// bigramJaccardScore scales the Jaccard similarity of the two strings'
// character bigram sets to 0..bigramScale.
func bigramJaccardScore(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	ga, gb := bigrams(a), bigrams(b)
	inter := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			inter++
		}
	}
	union := len(ga) + len(gb) - inter
	if union == 0 {
		return 0
	}
	score := int(float64(inter) / float64(union) * bigramScale)
	if score < 0 {
		score = 0
	}
	if score > bigramScale {
		score = bigramScale
	}
	return score
}

func bigrams(s string) map[string]struct{} {
	g := make(map[string]struct{}, len(s))
	for i := 1; i < len(s); i++ {
		g[s[i-1:i+1]] = struct{}{}
	}
	return g
}

// containsBonus rewards big containing small, scaled by small's length.
func containsBonus(small, big string) int {
	if small == "" || big == "" || !strings.Contains(big, small) {
		return 0
	}
	switch {
	case len(small) >= 12:
		return 25
	case len(small) >= 8:
		return 22
	case len(small) >= 5:
		return 18
	default:
		return 15
	}
}

func sharesToken(qTokens, cTokens []string) bool {
	for _, q := range qTokens {
		for _, c := range cTokens {
			if q == c {
				return true
			}
		}
	}
	return false
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func maxInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
