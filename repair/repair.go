// Package repair proposes fixes for failed forgiving-JSON parses. It
// is strictly opt-in: the parser never consults it, and nothing here
// runs during a successful parse. Given the original text and the
// *fjson.ParseError it produced, independent strategies each propose
// zero or more localized edits; the engine merges and ranks them by
// confidence. A pattern database decides which strategies are worth
// running for a given error shape and can be taught from outcomes via
// explicit RecordOutcome calls.
package repair

import (
	"errors"
	"sort"

	fjson "github.com/mcncl/fjson"
)

// Suggestion is a single proposed edit: replace the text covered by
// Span with Replacement. Confidence is in [0, 1].
type Suggestion struct {
	Span        fjson.Span
	Replacement string
	Confidence  float64
	Strategy    string
	Rationale   string
}

// Context carries everything a strategy needs to analyze a failure.
type Context struct {
	Input string
	Err   *fjson.ParseError
	// Pos is the error position clamped into [0, len(Input)].
	Pos int
}

// Strategy analyzes a failed parse and proposes edits. Strategies are
// independent: each sees the same context and must not assume another
// strategy's fix has been applied.
type Strategy interface {
	Name() string
	Propose(ctx *Context) []Suggestion
}

// Engine runs strategies selected by a pattern database and ranks the
// merged results. An Engine is safe for concurrent use; the only
// mutable state lives in the database and is synchronized there.
type Engine struct {
	db         *PatternDatabase
	strategies []Strategy
}

// NewEngine creates an engine with the standard strategy set and the
// given pattern database. A nil database means every strategy runs for
// every error.
func NewEngine(db *PatternDatabase) *Engine {
	return &Engine{
		db: db,
		strategies: []Strategy{
			BracketMatching{},
			QuoteInference{},
			CommaSuggestion{},
			TypeCoercion{},
			StructuralRepair{},
		},
	}
}

// DefaultEngine creates an engine backed by the default pattern
// database.
func DefaultEngine() *Engine {
	return NewEngine(DefaultPatterns())
}

// Database returns the engine's pattern database, for recording
// outcomes.
func (e *Engine) Database() *PatternDatabase {
	return e.db
}

// Suggest analyzes a failed parse of input and returns repair
// suggestions sorted by descending confidence. Overlapping suggestions
// are deduplicated, keeping the higher-confidence one. It never
// panics; for inputs it cannot analyze it returns an empty slice.
func Suggest(input string, err error) []Suggestion {
	return DefaultEngine().Suggest(input, err)
}

// Suggest implements the package-level Suggest against this engine's
// database.
func (e *Engine) Suggest(input string, err error) (out []Suggestion) {
	defer func() {
		// Suggestion generation must never take the caller down with
		// it, whatever the input looks like.
		if recover() != nil {
			out = nil
		}
	}()

	var perr *fjson.ParseError
	if err == nil || !errors.As(err, &perr) {
		return nil
	}

	pos := perr.Position()
	if pos < 0 {
		pos = 0
	}
	if pos > len(input) {
		pos = len(input)
	}
	ctx := &Context{Input: input, Err: perr, Pos: pos}

	selected, weights := e.selectStrategies(ctx)

	var all []Suggestion
	for _, s := range e.strategies {
		if _, ok := selected[s.Name()]; !ok {
			continue
		}
		for _, sug := range s.Propose(ctx) {
			if w, ok := weights[s.Name()]; ok {
				sug.Confidence *= w
			}
			sug.Confidence = clamp01(sug.Confidence)
			all = append(all, sug)
		}
	}

	return rankSuggestions(all)
}

// selectStrategies consults the pattern database for the subset worth
// trying, falling back to all strategies when nothing matches.
func (e *Engine) selectStrategies(ctx *Context) (map[string]struct{}, map[string]float64) {
	selected := make(map[string]struct{})
	weights := make(map[string]float64)

	if e.db != nil {
		for _, m := range e.db.Match(ctx.Err.Kind, ExtractFeatures(ctx)) {
			for _, name := range m.Strategies {
				selected[name] = struct{}{}
				if w, ok := weights[name]; !ok || m.Weight > w {
					weights[name] = m.Weight
				}
			}
		}
	}
	if len(selected) == 0 {
		for _, s := range e.strategies {
			selected[s.Name()] = struct{}{}
		}
	}
	return selected, weights
}

// rankSuggestions deduplicates overlapping spans (higher confidence
// wins) and sorts by descending confidence, breaking ties by span
// start and strategy name so the ordering is deterministic.
func rankSuggestions(all []Suggestion) []Suggestion {
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return a.Strategy < b.Strategy
	})

	var out []Suggestion
	for _, s := range all {
		overlaps := false
		for _, kept := range out {
			if kept.Span.Overlaps(s.Span) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			out = append(out, s)
		}
	}
	return out
}

// Apply returns input with the suggestion's edit performed. Spans
// outside the input are clamped.
func Apply(input string, s Suggestion) string {
	start := s.Span.Start
	if start < 0 {
		start = 0
	}
	if start > len(input) {
		start = len(input)
	}
	end := s.Span.End
	if end < start {
		end = start
	}
	if end > len(input) {
		end = len(input)
	}
	return input[:start] + s.Replacement + input[end:]
}

// AutoRepair iteratively repairs input with the default engine: parse,
// and on failure apply the top suggestion and retry, up to maxAttempts
// repairs. It returns the first successful value, or the most recent
// parse error when the attempts are exhausted or no suggestion is
// available.
func AutoRepair(input string, opts fjson.Options, maxAttempts int) (fjson.Value, error) {
	return DefaultEngine().AutoRepair(input, opts, maxAttempts)
}

// AutoRepair implements the package-level AutoRepair against this
// engine's strategies and database.
func (e *Engine) AutoRepair(input string, opts fjson.Options, maxAttempts int) (fjson.Value, error) {
	text := input
	var lastErr error
	for attempt := 0; ; attempt++ {
		v, err := fjson.ParseWithOptions(text, opts)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt >= maxAttempts {
			break
		}
		sugs := e.Suggest(text, err)
		if len(sugs) == 0 {
			break
		}
		text = Apply(text, sugs[0])
	}
	return fjson.Value{}, lastErr
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
