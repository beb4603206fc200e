package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Marshal renders v as compact JSON. Object members are written in order and
// HTML characters are left unescaped. A nil Value is written as null.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(x)))
	case Number:
		if !validNumber(string(x)) {
			return fmt.Errorf("jsontree: invalid number literal %q", string(x))
		}
		buf.WriteString(string(x))
	case String:
		return writeString(buf, string(x))
	case Array:
		buf.WriteByte('[')
		for i, el := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encode(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsontree: unsupported value %T", v)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func validNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

func (v Null) MarshalJSON() ([]byte, error)   { return Marshal(v) }
func (v Bool) MarshalJSON() ([]byte, error)   { return Marshal(v) }
func (v Number) MarshalJSON() ([]byte, error) { return Marshal(v) }
func (v String) MarshalJSON() ([]byte, error) { return Marshal(v) }
func (v Array) MarshalJSON() ([]byte, error)  { return Marshal(v) }
func (v Object) MarshalJSON() ([]byte, error) { return Marshal(v) }
