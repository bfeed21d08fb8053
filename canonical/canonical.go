// Package canonical produces a stable serialization and digest for JSON
// objects, used as the dedupe key across normalization and concatenation
// runs. Two structurally equal objects always canonicalize to the same
// bytes regardless of original key order.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/jsonlkit/jsonlkit/errors"
)

// Marshal serializes obj with keys sorted lexicographically at every
// nesting level, compact separators, and no HTML escaping.
func Marshal(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns the SHA-256 digest of the canonical serialization of obj as
// a 64-character lowercase hex string.
//
// A serialization failure here means the classifier accepted a value that is
// not expressible in the parsed JSON model; callers treat that as fatal.
func Hash(obj map[string]any) (string, error) {
	canon, err := Marshal(obj)
	if err != nil {
		return "", errors.Wrap(err, "canonical serialization failed")
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		return writeString(buf, t)
	case json.Number:
		return writeNumber(buf, t)
	case float64:
		buf.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case int:
		buf.WriteString(strconv.Itoa(t))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case []any:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeValue(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return errors.Newf("value of type %T is not a JSON value", v)
	}
	return nil
}

// writeString emits a JSON string literal without HTML escaping, so that
// canonical bytes match the compact form written to the accepted output.
func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline; canonical form has none.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// writeNumber emits a single canonical textual form per numeric value:
// integer literals pass through, everything else goes through float64
// shortest-roundtrip formatting so "1e2" and "100.0" canonicalize alike.
func writeNumber(buf *bytes.Buffer, n json.Number) error {
	lit := n.String()
	if !bytes.ContainsAny([]byte(lit), ".eE") {
		buf.WriteString(lit)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return errors.Wrapf(err, "non-numeric json.Number %q", lit)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}
