// internal/models/score.go
// Tagged-union JSON fields (score_json, draw_plan_json) modeled the way the
// teacher models ScoreDetails/FormatConfig: a struct implementing
// sql.Scanner/driver.Valuer so the same Go type works against the in-memory
// store and the Postgres store alike.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ScoreKind discriminates the shape a Score value was recorded in.
type ScoreKind string

const (
	ScoreKindDisplay ScoreKind = "display"
	ScoreKindSets    ScoreKind = "sets"
	ScoreKindKV      ScoreKind = "kv"
	ScoreKindUnknown ScoreKind = "unknown"
)

// SetResult is one scored set within a match (e.g. "8-4", "6-3").
type SetResult struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Score is the tagged-union value stored in Match.ScoreJSON. At most one of
// the payload fields is populated, selected by Kind.
type Score struct {
	Kind    ScoreKind         `json:"kind"`
	Display string            `json:"display,omitempty"`
	Sets    []SetResult       `json:"sets,omitempty"`
	KV      map[string]string `json:"kv,omitempty"`
}

// NewDisplayScore builds a Score carrying only a rendering string, e.g. the
// stylized default-weekend scores ("8-0", "6-0,6-0").
func NewDisplayScore(display string) Score {
	return Score{Kind: ScoreKindDisplay, Display: display}
}

// NewSetsScore builds a Score from parsed set results.
func NewSetsScore(sets []SetResult) Score {
	return Score{Kind: ScoreKindSets, Sets: sets}
}

// ParsedSetsOrNil returns the set results for standings computation, or nil
// with ok=false if this score carries no parseable sets (SCORE_PARSE_FAILED
// warning territory — the caller decides whether to surface that).
func (s Score) ParsedSetsOrNil() (sets []SetResult, ok bool) {
	if s.Kind != ScoreKindSets || len(s.Sets) == 0 {
		return nil, false
	}
	return s.Sets, true
}

// Scan implements sql.Scanner.
func (s *Score) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, okStr := value.(string); okStr {
			bytes = []byte(str)
		} else {
			return fmt.Errorf("cannot scan %T into Score", value)
		}
	}
	return json.Unmarshal(bytes, s)
}

// Value implements driver.Valuer.
func (s Score) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// DrawPlan is the compiled format description stored on an Event
// (template key + waterfall rounds + derived inventory counts).
type DrawPlan struct {
	Template      DrawTemplate   `json:"template"`
	WaterfallRounds int          `json:"waterfall_rounds"`
	Guarantee     int            `json:"guarantee"`
	Inventory     map[string]int `json:"inventory"` // e.g. {"WF":16,"RR":24}
	PoolCount     int            `json:"pool_count,omitempty"`
	PoolSize      int            `json:"pool_size,omitempty"`
	BracketCount  int            `json:"bracket_count,omitempty"`
}

func (p *DrawPlan) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into DrawPlan", value)
	}
	return json.Unmarshal(bytes, p)
}

func (p DrawPlan) Value() (driver.Value, error) {
	return json.Marshal(p)
}
