package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Indent is the indentation written into raw-value fields.
const Indent = "    "

var (
	// ErrNotObject is returned when the raw value is valid JSON but not an
	// object.
	ErrNotObject = errors.New("model: raw value must be a JSON object")
	// ErrTrailingData is returned when extra content follows the object.
	ErrTrailingData = errors.New("model: unexpected data after JSON object")
)

// Serialize renders m with the canonical four space indentation.
func Serialize(m *Mapping) string {
	return SerializeIndent(m, Indent)
}

// SerializeIndent renders m using indent for each nesting level. An empty
// indent produces the compact form.
func SerializeIndent(m *Mapping, indent string) string {
	entries := m.Entries()
	if len(entries) == 0 {
		return "{}"
	}

	var buf strings.Builder
	buf.WriteByte('{')
	for idx, entry := range entries {
		if idx > 0 {
			buf.WriteByte(',')
		}
		if indent != "" {
			buf.WriteByte('\n')
			buf.WriteString(indent)
		}
		buf.WriteString(quote(entry.Key))
		buf.WriteByte(':')
		if indent != "" {
			buf.WriteByte(' ')
		}
		buf.WriteString(quote(entry.Value))
	}
	if indent != "" {
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.String()
}

// Parse decodes raw into a Mapping. Blank input yields an empty mapping.
// Duplicate keys resolve to the last occurrence; non-string values are kept as
// text (null becomes the empty string, numbers their shortest decimal form,
// nested values their compact JSON).
func Parse(raw string) (*Mapping, error) {
	mapping := NewMapping()
	if strings.TrimSpace(raw) == "" {
		return mapping, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("model: unexpected object key %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		text, err := valueText(value)
		if err != nil {
			return nil, err
		}
		mapping.Set(key, text)
	}

	if _, err := dec.Token(); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return mapping, nil
}

func valueText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var out string
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return "", err
		}
		return out, nil
	case 'n':
		return "", nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil
	case 't', 'f':
		return string(trimmed), nil
	default:
		return numberText(string(trimmed)), nil
	}
}

// numberText formats a JSON number literal the way a browser prints the
// parsed number: shortest round-trip digits, exponent form outside
// [1e-6, 1e21) and "" for values that overflow to infinity.
func numberText(literal string) string {
	f, err := strconv.ParseFloat(literal, 64)
	if math.IsInf(f, 0) {
		return ""
	}
	if err != nil && f != 0 {
		return literal
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

// quote encodes s as a JSON string without escaping HTML characters.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return unescapeLineSeparators(strings.TrimSuffix(buf.String(), "\n"))
}

// unescapeLineSeparators writes U+2028 and U+2029 literally the way browsers
// do; encoding/json always escapes them.
func unescapeLineSeparators(encoded string) string {
	if !strings.Contains(encoded, `\u202`) {
		return encoded
	}
	var out strings.Builder
	out.Grow(len(encoded))
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if c != '\\' || i+1 >= len(encoded) {
			out.WriteByte(c)
			continue
		}
		switch rest := encoded[i+1:]; {
		case strings.HasPrefix(rest, "u2028"):
			out.WriteRune('\u2028')
			i += 5
		case strings.HasPrefix(rest, "u2029"):
			out.WriteRune('\u2029')
			i += 5
		default:
			out.WriteByte(c)
			out.WriteByte(encoded[i+1])
			i++
		}
	}
	return out.String()
}
