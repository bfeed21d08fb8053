// Package classify implements the per-line normalization decision procedure.
//
// A raw JSONL line is parsed and sorted into accepted records (top-level
// objects, or object elements of a top-level array) and discard records
// (everything else, with enough positional context to diagnose the source).
package classify

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/jsonlkit/jsonlkit/errors"
)

// Shape tags used in discard records. These match the labels emitted in the
// discard log wire format and are diagnostic only.
const (
	TagStr        = "str"
	TagInt        = "int"
	TagFloat      = "float"
	TagBool       = "bool"
	TagNull       = "null"
	TagList       = "list"
	TagDict       = "dict"
	TagParseError = "parse_error"
)

// Discard reasons. Fixed vocabulary; consumers filter the discard log on
// these strings.
const (
	ReasonInvalidJSON   = "invalid JSON"
	ReasonNonDictInList = "non-dict element in list"
	ReasonNotDictOrList = "top-level value is not dict or list"
)

// maxRawValue caps the raw text preserved for unparseable lines so a single
// pathological line cannot blow up the discard log.
const maxRawValue = 1024

var errTrailingData = errors.New("trailing data after JSON value")

// Record is an accepted top-level JSON object.
type Record = map[string]any

// Discard describes one rejected item, in the discard-log wire format.
// Index is a pointer so that index 0 survives serialization while top-level
// rejections omit the field entirely.
type Discard struct {
	Line   int    `json:"line"`
	Index  *int   `json:"index,omitempty"`
	Type   string `json:"type"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

// Line classifies one raw input line.
//
// Rules, in order:
//  1. blank or whitespace-only line: nothing accepted, nothing discarded
//  2. unparseable line: one parse_error discard carrying the raw text
//  3. top-level object: one accepted record
//  4. top-level array: object elements accepted in order, everything else
//     discarded with its 0-based index
//  5. top-level scalar: one discard
func Line(text string, lineno int) ([]Record, []Discard) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	value, err := Parse(trimmed)
	if err != nil {
		return nil, []Discard{{
			Line:   lineno,
			Type:   TagParseError,
			Value:  truncate(trimmed),
			Reason: ReasonInvalidJSON,
		}}
	}

	switch v := value.(type) {
	case map[string]any:
		return []Record{v}, nil

	case []any:
		var accepted []Record
		var discards []Discard
		for idx, elem := range v {
			if obj, ok := elem.(map[string]any); ok {
				accepted = append(accepted, obj)
				continue
			}
			i := idx
			discards = append(discards, Discard{
				Line:   lineno,
				Index:  &i,
				Type:   TagOf(elem),
				Value:  elem,
				Reason: ReasonNonDictInList,
			})
		}
		return accepted, discards

	default:
		return nil, []Discard{{
			Line:   lineno,
			Type:   TagOf(value),
			Value:  value,
			Reason: ReasonNotDictOrList,
		}}
	}
}

// Parse decodes a single JSON value, rejecting trailing garbage. Numbers
// are kept as json.Number so the int/float distinction in the source text
// survives into discard tags.
func Parse(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// A valid line holds exactly one JSON value; the decoder must be
	// exhausted. More() is not enough here: it reports false for trailing
	// close delimiters, letting lines like {"a":1}] slip through.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

// TagOf reports the shape tag for a parsed JSON value.
func TagOf(v any) string {
	switch n := v.(type) {
	case nil:
		return TagNull
	case bool:
		return TagBool
	case string:
		return TagStr
	case json.Number:
		if isIntLiteral(n.String()) {
			return TagInt
		}
		return TagFloat
	case float64:
		return TagFloat
	case []any:
		return TagList
	case map[string]any:
		return TagDict
	default:
		return TagParseError
	}
}

// isIntLiteral reports whether a JSON number literal has integer form,
// i.e. no fraction or exponent part.
func isIntLiteral(lit string) bool {
	return !strings.ContainsAny(lit, ".eE")
}

func truncate(s string) string {
	if len(s) <= maxRawValue {
		return s
	}
	cut := maxRawValue
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut-- // back off to a rune boundary
	}
	return s[:cut]
}
