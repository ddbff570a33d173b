package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSerialize_Format(t *testing.T) {
	cases := []struct {
		name string
		rows []Row
		want string
	}{
		{name: "empty", want: "{}"},
		{name: "single", rows: []Row{{Key: "x", Value: "1"}}, want: "{\n    \"x\": \"1\"\n}"},
		{
			name: "multiple",
			rows: []Row{{Key: "a", Value: "1"}, {Key: "b", Value: ""}},
			want: "{\n    \"a\": \"1\",\n    \"b\": \"\"\n}",
		},
		{
			name: "escaping",
			rows: []Row{{Key: "<tag>", Value: "a \"quoted\" & \\ value\n"}},
			want: "{\n    \"<tag>\": \"a \\\"quoted\\\" & \\\\ value\\n\"\n}",
		},
		{
			name: "line separators",
			rows: []Row{{Key: "a", Value: "x\u2028y\u2029z"}},
			want: "{\n    \"a\": \"x\u2028y\u2029z\"\n}",
		},
		{
			name: "escaped separator text",
			rows: []Row{{Key: "a", Value: `\u2028`}},
			want: "{\n    \"a\": \"\\\\u2028\"\n}",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Serialize(MappingFromRows(tc.rows))
			if got != tc.want {
				t.Fatalf("serialize mismatch\nwant: %q\n got: %q", tc.want, got)
			}
		})
	}
}

func TestSerializeIndent_Compact(t *testing.T) {
	m := MappingFromRows([]Row{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}})
	if got := SerializeIndent(m, ""); got != `{"a":"1","b":"2"}` {
		t.Fatalf("unexpected compact output %q", got)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":"1","b":"2"}` {
		t.Fatalf("unexpected marshal output %s", data)
	}
}

func TestParse_EmptyValue(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		m, err := Parse(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if m.Len() != 0 {
			t.Fatalf("expected empty mapping for %q", raw)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	rows := []Row{
		{Key: "color", Value: "red"},
		{Key: "size", Value: "XL"},
		{Key: "", Value: "blank key"},
		{Key: "unicode", Value: "naïve ☃"},
	}
	original := MappingFromRows(rows)

	parsed, err := Parse(Serialize(original))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(original) {
		t.Fatalf("round trip mismatch:\n%s", cmp.Diff(original.Map(), parsed.Map()))
	}

	again := MappingFromRows(parsed.Rows())
	if Serialize(again) != Serialize(original) {
		t.Fatalf("rows round trip changed serialization")
	}
}

func TestParse_DuplicateKeysLastWins(t *testing.T) {
	m, err := Parse(`{"a": "1", "b": "x", "a": "2"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Entry{{Key: "a", Value: "2"}, {Key: "b", Value: "x"}}
	if diff := cmp.Diff(want, m.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NonStringValues(t *testing.T) {
	m, err := Parse(`{"n": 1.50, "t": true, "f": false, "z": null, "o": {"k": [1, 2]}, "a": [ "x" ]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{
		"n": "1.5",
		"t": "true",
		"f": "false",
		"z": "",
		"o": `{"k":[1,2]}`,
		"a": `["x"]`,
	}
	if diff := cmp.Diff(want, m.Map()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NumberText(t *testing.T) {
	cases := map[string]string{
		"1.50":     "1.5",
		"-0":       "0",
		"10":       "10",
		"1E3":      "1000",
		"0.000001": "0.000001",
		"1e-7":     "1e-7",
		"1.5e-10":  "1.5e-10",
		"1e21":     "1e+21",
		"123e20":   "1.23e+22",
		"1e400":    "",
	}
	for literal, want := range cases {
		t.Run(literal, func(t *testing.T) {
			m, err := Parse(`{"n": ` + literal + `}`)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got, _ := m.Get("n"); got != want {
				t.Fatalf("value = %q, want %q", got, want)
			}
		})
	}
}

func TestParse_Failures(t *testing.T) {
	cases := map[string]string{
		"invalid":      "{invalid",
		"unterminated": `{"a": "1"`,
		"array":        `["a"]`,
		"string":       `"a"`,
		"trailing":     `{"a": "1"} {}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(raw); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		})
	}

	if _, err := Parse(`[]`); !errors.Is(err, ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
}

func TestMapping_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Data Mapping `json:"data"`
	}
	if err := json.Unmarshal([]byte(`{"data": {"b": "2", "a": "1"}}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := payload.Data.Keys(); !cmp.Equal(got, []string{"b", "a"}) {
		t.Fatalf("unexpected keys %v", got)
	}
}
