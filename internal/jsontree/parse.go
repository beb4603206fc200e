package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	// ErrSyntax is returned when the input is not a single valid JSON value.
	ErrSyntax = errors.New("invalid JSON")

	// ErrTooDeep is returned when containers nest deeper than the allowed maximum.
	ErrTooDeep = errors.New("JSON nesting exceeds maximum depth")
)

// Parse decodes data into a Value. Containers may nest at most maxDepth
// levels; maxDepth <= 0 disables the limit.
//
// Input that is not valid UTF-8, or that escapes an unpaired UTF-16
// surrogate, is rejected with ErrSyntax, so every String decodes
// losslessly.
func Parse(data []byte, maxDepth int) (Value, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrSyntax)
	}
	if hasLoneSurrogate(data) {
		return nil, fmt.Errorf("%w: unpaired UTF-16 surrogate escape", ErrSyntax)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	p := &parser{dec: dec, maxDepth: maxDepth}
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrSyntax)
	}
	return v, nil
}

type parser struct {
	dec      *json.Decoder
	maxDepth int
}

func (p *parser) token() (json.Token, error) {
	tok, err := p.dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return tok, nil
}

func (p *parser) value(depth int) (Value, error) {
	tok, err := p.token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if p.maxDepth > 0 && depth+1 > p.maxDepth {
			return nil, fmt.Errorf("%w (%d)", ErrTooDeep, p.maxDepth)
		}
		switch t {
		case '{':
			return p.object(depth + 1)
		case '[':
			return p.array(depth + 1)
		}
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, t)
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	}
	return nil, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
}

func (p *parser) object(depth int) (Value, error) {
	obj := Object{}
	for p.dec.More() {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key is not a string", ErrSyntax)
		}
		child, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: key, Value: child})
	}
	// closing '}'
	if _, err := p.token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *parser) array(depth int) (Value, error) {
	arr := Array{}
	for p.dec.More() {
		child, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, child)
	}
	// closing ']'
	if _, err := p.token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// hasLoneSurrogate scans the string literals of data for a \uXXXX escape
// in the surrogate range that is not part of a high/low pair.
func hasLoneSurrogate(data []byte) bool {
	if !bytes.Contains(data, []byte(`\u`)) {
		return false
	}

	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			if i+1 >= len(data) {
				return false
			}
			if data[i+1] != 'u' {
				i++
				continue
			}
			r, ok := hexRune(data, i+2)
			if !ok {
				return false
			}
			i += 5
			switch {
			case r >= 0xDC00 && r <= 0xDFFF:
				return true
			case r >= 0xD800 && r <= 0xDBFF:
				if i+2 >= len(data) || data[i+1] != '\\' || data[i+2] != 'u' {
					return true
				}
				low, ok := hexRune(data, i+3)
				if !ok || low < 0xDC00 || low > 0xDFFF {
					return true
				}
				i += 6
			}
		}
	}
	return false
}

// hexRune decodes the four hex digits at data[at:].
func hexRune(data []byte, at int) (rune, bool) {
	if at+4 > len(data) {
		return 0, false
	}
	var r rune
	for _, c := range data[at : at+4] {
		switch {
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}
