package jsontree

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null", `null`},
		{"bool", `true`},
		{"integer", `42`},
		{"float literal kept", `1.0`},
		{"exponent kept", `-2.5E+10`},
		{"big integer kept", `123456789012345678901234567890`},
		{"string", `"hello"`},
		{"empty object", `{}`},
		{"empty array", `[]`},
		{"key order kept", `{"z":1,"a":2,"m":3}`},
		{"duplicate keys kept", `{"a":1,"a":2}`},
		{"nested", `{"a":[1,{"b":null,"c":[true,false]}],"d":"x"}`},
		{"html not escaped", `{"s":"<b>&</b>"}`},
		{"unicode", `{"greeting":"مرحباً بالعالم!"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.input), 0)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			out, err := Marshal(v)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(out) != tt.input {
				t.Errorf("Round trip = %s, want %s", out, tt.input)
			}
		})
	}
}

func TestParse_Whitespace(t *testing.T) {
	v, err := Parse([]byte("  {\n \"a\" : [ 1 , 2 ] }\n"), 0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, _ := Marshal(v)
	if string(out) != `{"a":[1,2]}` {
		t.Errorf("Got %s", out)
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		``,
		`{`,
		`{"a":}`,
		`[1,2`,
		`{"a":1}{"b":2}`,
		`{"a":1} x`,
		`nul`,
		`{1:2}`,
		`]`,
		"\"\xff\"",
		"{\"n\":\"\xc3t\xffe\"}",
		`{"id":"ab\ud800cd"}`,
		`"\udc00"`,
		`"\ud800\u0041"`,
		`["\ud800"]`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse([]byte(input), 0)
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("Parse(%q) error = %v, want ErrSyntax", input, err)
			}
		})
	}
}

func TestParse_Escapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"\ud83d\ude00"`, "\U0001F600"},
		{`"\uD83D\uDE00 ok"`, "\U0001F600 ok"},
		{`"\\ud800"`, `\ud800`},
		{`"\u00e9"`, "é"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input), 0)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if v != String(tt.want) {
				t.Errorf("Parse(%s) = %q, want %q", tt.input, v, tt.want)
			}
		})
	}
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 5) + strings.Repeat("]", 5)

	if _, err := Parse([]byte(deep), 5); err != nil {
		t.Errorf("Depth 5 with limit 5 should parse, got %v", err)
	}

	_, err := Parse([]byte(deep), 4)
	if !errors.Is(err, ErrTooDeep) {
		t.Errorf("Expected ErrTooDeep, got %v", err)
	}

	if _, err := Parse([]byte(deep), 0); err != nil {
		t.Errorf("Limit 0 should disable the check, got %v", err)
	}
}

func TestPath_String(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{nil, ""},
		{Path{KeySegment("payload"), KeySegment("greeting")}, "/payload/greeting"},
		{Path{KeySegment("b"), IndexSegment(1)}, "/b/1"},
		{Path{KeySegment("a/b"), KeySegment("m~n")}, "/a~1b/m~0n"},
	}

	for _, tt := range tests {
		if got := tt.path.String(); got != tt.want {
			t.Errorf("Path.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPath_ChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 8)
	base[0] = KeySegment("root")

	a := base.Child(KeySegment("a"))
	b := base.Child(KeySegment("b"))

	if a.String() != "/root/a" || b.String() != "/root/b" {
		t.Errorf("Sibling paths share storage: %s, %s", a, b)
	}
}

func TestSameShape(t *testing.T) {
	base := mustParse(t, `{"a":1,"b":["x","y"],"c":null}`)

	tests := []struct {
		name  string
		other string
		want  bool
	}{
		{"identical", `{"a":1,"b":["x","y"],"c":null}`, true},
		{"strings differ", `{"a":1,"b":["p","q"],"c":null}`, true},
		{"number differs", `{"a":2,"b":["x","y"],"c":null}`, false},
		{"key order differs", `{"b":["x","y"],"a":1,"c":null}`, false},
		{"array length differs", `{"a":1,"b":["x"],"c":null}`, false},
		{"variant differs", `{"a":1,"b":["x",1],"c":null}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameShape(base, mustParse(t, tt.other)); got != tt.want {
				t.Errorf("SameShape = %v, want %v", got, tt.want)
			}
		})
	}

	if Equal(base, mustParse(t, `{"a":1,"b":["p","q"],"c":null}`)) {
		t.Error("Equal should compare string contents")
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{`"x"`, 0},
		{`[]`, 1},
		{`{"a":[1,[2]]}`, 3},
	}
	for _, tt := range tests {
		if got := Depth(mustParse(t, tt.input)); got != tt.want {
			t.Errorf("Depth(%s) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestMarshal_InvalidNumber(t *testing.T) {
	if _, err := Marshal(Array{Number("NaN")}); err == nil {
		t.Error("Expected error for invalid number literal")
	}
}

func TestObject_Get(t *testing.T) {
	obj := mustParse(t, `{"a":1,"b":2}`).(Object)

	v, ok := obj.Get("b")
	if !ok || v != Number("2") {
		t.Errorf("Get(b) = %v, %v", v, ok)
	}
	if _, ok := obj.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
	if keys := obj.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v", keys)
	}
}

func mustParse(t *testing.T, s string) Value {
	t.Helper()
	v, err := Parse([]byte(s), 0)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", s, err)
	}
	return v
}
