package repair

import (
	"fmt"
	"sync"

	fjson "github.com/mcncl/fjson"
)

// Feature names produced by ExtractFeatures. Patterns match on these
// plus the error kind.
const (
	FeatureAtEndOfInput    = "at_end_of_input"
	FeatureOddQuoteCount   = "odd_quote_count"
	FeatureUnclosedBracket = "unclosed_bracket"
	FeatureExtraCloser     = "extra_closer"
	FeatureAdjacentValues  = "adjacent_values"
	FeatureBareIdentifier  = "bare_identifier"
)

// ExtractFeatures derives cheap textual features from a failure. The
// feature set, not the raw input, is what patterns match against.
func ExtractFeatures(ctx *Context) []string {
	var feats []string
	if ctx.Pos >= len(ctx.Input) {
		feats = append(feats, FeatureAtEndOfInput)
	}
	if unescapedQuoteCount(ctx.Input)%2 == 1 {
		feats = append(feats, FeatureOddQuoteCount)
	}
	scan := scanBrackets(ctx.Input)
	if len(scan.open) > 0 || len(scan.mismatched) > 0 {
		feats = append(feats, FeatureUnclosedBracket)
	}
	if len(scan.unmatchedClosers) > 0 {
		feats = append(feats, FeatureExtraCloser)
	}
	if prev, cur, ok := tokensAround(ctx.Input, ctx.Pos); ok {
		if endsValue(prev.Kind) && startsValue(cur.Kind) {
			feats = append(feats, FeatureAdjacentValues)
		}
	}
	if _, _, ok := identifierAt(ctx.Input, ctx.Pos); ok {
		feats = append(feats, FeatureBareIdentifier)
	}
	return feats
}

// Pattern describes a class of failures and the strategies worth
// trying for it. Kinds and Features are conjunctive within themselves:
// the error kind must be one of Kinds (empty means any), and every
// listed feature must be present.
type Pattern struct {
	ID         string
	Kinds      []fjson.ErrorKind
	Features   []string
	Strategies []string
	// SuccessRate is the seed confidence multiplier; RecordOutcome
	// moves it toward observed outcomes.
	SuccessRate float64
}

// Match is a pattern that applied to a failure, with its current
// learned weight.
type Match struct {
	ID         string
	Strategies []string
	Weight     float64
}

type patternState struct {
	def      Pattern
	rate     float64
	attempts int
}

// PatternDatabase maps failure shapes to repair strategies and keeps a
// per-pattern success rate that callers can train with RecordOutcome.
// All methods are safe for concurrent use.
type PatternDatabase struct {
	mu       sync.RWMutex
	patterns map[string]*patternState
	order    []string
}

// NewPatternDatabase returns an empty database.
func NewPatternDatabase() *PatternDatabase {
	return &PatternDatabase{patterns: make(map[string]*patternState)}
}

// DefaultPatterns returns a database seeded with the common failure
// shapes of hand-written JSON.
func DefaultPatterns() *PatternDatabase {
	db := NewPatternDatabase()
	for _, p := range []Pattern{
		{
			ID:          "missing_closing_bracket",
			Kinds:       []fjson.ErrorKind{fjson.KindUnexpectedEOF, fjson.KindExpected},
			Features:    []string{FeatureUnclosedBracket},
			Strategies:  []string{"bracket_matching", "structural_repair"},
			SuccessRate: 0.95,
		},
		{
			ID:          "extra_closing_bracket",
			Kinds:       []fjson.ErrorKind{fjson.KindExpected, fjson.KindUnexpectedChar},
			Features:    []string{FeatureExtraCloser},
			Strategies:  []string{"bracket_matching"},
			SuccessRate: 0.9,
		},
		{
			ID:          "unmatched_quote",
			Kinds:       []fjson.ErrorKind{fjson.KindUnterminatedString, fjson.KindUnexpectedEOF},
			Features:    []string{FeatureOddQuoteCount},
			Strategies:  []string{"quote_inference", "structural_repair"},
			SuccessRate: 0.9,
		},
		{
			ID:          "missing_comma",
			Kinds:       []fjson.ErrorKind{fjson.KindExpected},
			Features:    []string{FeatureAdjacentValues},
			Strategies:  []string{"comma_insertion"},
			SuccessRate: 0.9,
		},
		{
			ID:          "unquoted_value",
			Kinds:       []fjson.ErrorKind{fjson.KindExpected},
			Features:    []string{FeatureBareIdentifier},
			Strategies:  []string{"type_coercion"},
			SuccessRate: 0.85,
		},
	} {
		db.Register(p)
	}
	return db
}

// Register adds or replaces a pattern. A zero SuccessRate is seeded to
// 0.5.
func (db *PatternDatabase) Register(p Pattern) {
	db.mu.Lock()
	defer db.mu.Unlock()
	rate := p.SuccessRate
	if rate == 0 {
		rate = 0.5
	}
	if _, exists := db.patterns[p.ID]; !exists {
		db.order = append(db.order, p.ID)
	}
	db.patterns[p.ID] = &patternState{def: p, rate: rate}
}

// Match returns every pattern whose kind and feature requirements are
// satisfied, in registration order.
func (db *PatternDatabase) Match(kind fjson.ErrorKind, features []string) []Match {
	featSet := make(map[string]struct{}, len(features))
	for _, f := range features {
		featSet[f] = struct{}{}
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []Match
	for _, id := range db.order {
		st := db.patterns[id]
		if !kindMatches(st.def.Kinds, kind) {
			continue
		}
		ok := true
		for _, f := range st.def.Features {
			if _, have := featSet[f]; !have {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, Match{ID: id, Strategies: st.def.Strategies, Weight: st.rate})
	}
	return out
}

const learningRate = 0.1

// RecordOutcome reports whether applying a suggestion derived from the
// given pattern fixed the input. The pattern's success rate moves
// toward the outcome by an exponential moving average, so recent
// outcomes weigh more than old ones. Learning only ever happens
// through this call.
func (db *PatternDatabase) RecordOutcome(patternID string, success bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	st, ok := db.patterns[patternID]
	if !ok {
		return fmt.Errorf("unknown repair pattern %q", patternID)
	}
	target := 0.0
	if success {
		target = 1.0
	}
	st.rate += learningRate * (target - st.rate)
	st.attempts++
	return nil
}

// SuccessRate reports the current learned rate for a pattern.
func (db *PatternDatabase) SuccessRate(patternID string) (float64, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	st, ok := db.patterns[patternID]
	if !ok {
		return 0, false
	}
	return st.rate, true
}

func kindMatches(kinds []fjson.ErrorKind, kind fjson.ErrorKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
