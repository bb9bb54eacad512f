// Package board normalizes heterogeneous per-title leaderboard documents
// into uniform board and row records.
//
// Upstream documents vary per title: scoreboards may declare column names or
// not, rows may be keyed objects, positional arrays, or bare values, and the
// rank/name columns hide behind a zoo of aliases. Everything funnels through
// one row-variant normalizer so the rest of the engine sees a single shape.
package board

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// hardRowCap bounds rows per board regardless of configuration.
const hardRowCap = 1000

// rankSentinel sorts rows without a numeric rank after every ranked row.
const rankSentinel = 1 << 30

// Row is one normalized leaderboard row.
type Row struct {
	Rank   string   `json:"rank"`
	Name   string   `json:"name"`
	Metric string   `json:"metric"`
	Extras []string `json:"extras,omitempty"`
}

// Board is one named scoreboard with rows sorted by rank ascending.
type Board struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Parser turns raw title documents into Boards.
type Parser struct {
	maxRows          int
	rankAliases      []string
	nameAliases      []string
	metricPreference []string
}

// NewParser creates a Parser with configuration options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		rankAliases: []string{"rank", "#", "pos", "position", "place"},
		nameAliases: []string{
			"name", "player", "gamertag", "gamer", "tag", "alias",
			"username", "user", "gt", "account",
		},
		metricPreference: []string{
			"score", "points", "rating", "time", "best time", "laps", "wins", "value",
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// document mirrors the wire shape of /data/by_id/<id>.json.
type document struct {
	GameTitle   string       `json:"game_title"`
	Scoreboards []scoreboard `json:"scoreboards"`
}

type scoreboard struct {
	Name    string            `json:"name"`
	Columns []string          `json:"columns"`
	Rows    []json.RawMessage `json:"rows"`
}

// Parse decodes a title document. It returns the document's display title
// (may be empty) and every scoreboard that yielded at least one row.
func (p *Parser) Parse(doc []byte) (string, []Board, error) {
	var d document
	if err := json.Unmarshal(doc, &d); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if d.Scoreboards == nil {
		return d.GameTitle, nil, ErrNoScoreboards
	}

	var boards []Board
	for _, sb := range d.Scoreboards {
		b := p.parseBoard(sb)
		if len(b.Rows) > 0 {
			boards = append(boards, b)
		}
	}
	if len(boards) == 0 {
		return d.GameTitle, nil, ErrNoUsableRows
	}
	return d.GameTitle, boards, nil
}

func (p *Parser) parseBoard(sb scoreboard) Board {
	b := Board{Name: sb.Name}
	if b.Name == "" {
		b.Name = "default"
	}

	cols := sb.Columns
	// Without declared columns, infer them from the first row's key set,
	// but only when rows are keyed objects.
	if len(cols) == 0 && len(sb.Rows) > 0 {
		if rv, err := decodeRow(sb.Rows[0]); err == nil && rv.kind == rowObject {
			for _, f := range rv.pairs {
				cols = append(cols, f.key)
			}
		}
	}

	rankIdx, nameIdx := -1, -1
	for i, c := range cols {
		if rankIdx < 0 && inListCI(c, p.rankAliases) {
			rankIdx = i
		}
		if nameIdx < 0 && inListCI(c, p.nameAliases) {
			nameIdx = i
		}
	}

	for _, raw := range sb.Rows {
		rv, err := decodeRow(raw)
		if err != nil {
			continue
		}
		row := p.normalizeRow(rv, cols, rankIdx, nameIdx, len(b.Rows))
		b.Rows = append(b.Rows, row)

		if p.maxRows > 0 && len(b.Rows) >= p.maxRows {
			break
		}
		if len(b.Rows) >= hardRowCap {
			break
		}
	}

	sort.SliceStable(b.Rows, func(i, j int) bool {
		return rankSortKey(b.Rows[i].Rank) < rankSortKey(b.Rows[j].Rank)
	})
	return b
}

// normalizeRow maps one decoded row variant onto the uniform Row shape.
// position is the 0-based index used to synthesize a rank when absent.
func (p *Parser) normalizeRow(rv rowValue, cols []string, rankIdx, nameIdx, position int) Row {
	var row Row
	var extras []string

	switch rv.kind {
	case rowObject:
		byKey := func(i int) string {
			if i < 0 || i >= len(cols) {
				return ""
			}
			return rv.value(cols[i])
		}
		row.Rank = byKey(rankIdx)
		row.Name = byKey(nameIdx)

		// Declared columns may not resolve for this particular row; fall
		// back to scanning the row's own keys for an alias.
		if row.Rank == "" {
			for _, f := range rv.pairs {
				if inListCI(f.key, p.rankAliases) {
					row.Rank = f.value
					break
				}
			}
		}
		if row.Name == "" {
			for _, f := range rv.pairs {
				if inListCI(f.key, p.nameAliases) {
					row.Name = f.value
					break
				}
			}
		}
		if row.Rank == "" {
			row.Rank = strconv.Itoa(position + 1)
		}

		for i, c := range cols {
			if i == rankIdx || i == nameIdx {
				continue
			}
			if v := rv.value(c); v != "" {
				extras = append(extras, c+"="+v)
			}
		}
		declared := make(map[string]struct{}, len(cols))
		for _, c := range cols {
			declared[c] = struct{}{}
		}
		for _, f := range rv.pairs {
			if f.key == "" || f.value == "" {
				continue
			}
			if _, ok := declared[f.key]; ok {
				continue
			}
			extras = append(extras, f.key+"="+f.value)
		}

	case rowArray:
		at := func(i int) string {
			if i < 0 || i >= len(rv.cells) {
				return ""
			}
			return rv.cells[i]
		}
		if rankIdx >= 0 {
			row.Rank = at(rankIdx)
		}
		if row.Rank == "" {
			row.Rank = strconv.Itoa(position + 1)
		}
		row.Name = at(nameIdx)

		for i, c := range cols {
			if i == rankIdx || i == nameIdx {
				continue
			}
			if v := at(i); v != "" {
				extras = append(extras, c+"="+v)
			}
		}

	case rowScalar:
		row.Rank = strconv.Itoa(position + 1)
		row.Name = rv.scalar
	}

	extras = p.stripAliased(extras)
	row.Metric, extras = p.promoteMetric(extras)
	row.Extras = extras
	return row
}

// stripAliased drops extras whose key is itself a rank or name alias, so a
// value surfaced through the alias scan is never shown twice.
func (p *Parser) stripAliased(extras []string) []string {
	cleaned := extras[:0]
	for _, kv := range extras {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			continue
		}
		k := kv[:eq]
		if inListCI(k, p.rankAliases) || inListCI(k, p.nameAliases) {
			continue
		}
		cleaned = append(cleaned, kv)
	}
	return cleaned
}

// promoteMetric picks the single displayed metric from extras by preference
// order, falling back to the first extra, and removes it from the list.
func (p *Parser) promoteMetric(extras []string) (string, []string) {
	bestIdx, bestPref := -1, len(p.metricPreference)+1
	for i, kv := range extras {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			continue
		}
		if pref := p.metricPref(kv[:eq]); pref < bestPref {
			bestPref, bestIdx = pref, i
		}
	}
	if bestIdx < 0 && len(extras) > 0 {
		bestIdx = 0
	}
	if bestIdx < 0 {
		return "", extras
	}
	kv := extras[bestIdx]
	eq := strings.IndexByte(kv, '=')
	metric := kv[eq+1:]
	return metric, append(extras[:bestIdx], extras[bestIdx+1:]...)
}

func (p *Parser) metricPref(key string) int {
	k := strings.ToLower(key)
	for i, pref := range p.metricPreference {
		if k == pref {
			return i
		}
	}
	return len(p.metricPreference) + 1
}

func inListCI(s string, list []string) bool {
	for _, v := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// rankSortKey extracts the first run of digits from a rank string. Rows
// without digits sort after every numbered row.
func rankSortKey(rank string) int {
	n, any := 0, false
	for i := 0; i < len(rank); i++ {
		c := rank[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			any = true
			continue
		}
		if any {
			break
		}
	}
	if !any {
		return rankSentinel
	}
	return n
}

// rowKind tags the three wire shapes a row can take.
type rowKind int

const (
	rowObject rowKind = iota
	rowArray
	rowScalar
)

// field is an ordered key/value pair from an object row. Order matters for
// column inference and for extras presentation.
type field struct {
	key   string
	value string
}

// rowValue is the tagged variant consumed by normalizeRow.
type rowValue struct {
	kind   rowKind
	pairs  []field
	cells  []string
	scalar string
}

func (rv rowValue) value(key string) string {
	for _, f := range rv.pairs {
		if f.key == key {
			return f.value
		}
	}
	return ""
}

// decodeRow decodes one raw row into the tagged variant. Object keys are
// read through the token stream to preserve document order, which a plain
// map unmarshal would lose.
func decodeRow(raw json.RawMessage) (rowValue, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return rowValue{}, ErrBadDocument
	}

	switch trimmed[0] {
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return rowValue{}, err
		}
		rv := rowValue{kind: rowObject}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return rowValue{}, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return rowValue{}, ErrBadDocument
			}
			var v interface{}
			if err := dec.Decode(&v); err != nil {
				return rowValue{}, err
			}
			rv.pairs = append(rv.pairs, field{key: key, value: stringify(v)})
		}
		return rv, nil

	case '[':
		var vals []interface{}
		if err := json.Unmarshal(trimmed, &vals); err != nil {
			return rowValue{}, err
		}
		rv := rowValue{kind: rowArray, cells: make([]string, len(vals))}
		for i, v := range vals {
			rv.cells[i] = stringify(v)
		}
		return rv, nil

	default:
		var v interface{}
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return rowValue{}, err
		}
		return rowValue{kind: rowScalar, scalar: stringify(v)}, nil
	}
}

// stringify renders a decoded JSON value for display. Whole floats print
// without a trailing ".0"; nulls print empty.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
