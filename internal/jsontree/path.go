package jsontree

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: either an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns a segment selecting an object member.
func KeySegment(key string) Segment { return Segment{Key: key} }

// IndexSegment returns a segment selecting an array element.
func IndexSegment(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Path locates a node from the document root.
type Path []Segment

// Child returns a new path extended by seg. The receiver is never modified,
// so sibling paths never share a backing array.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// String renders p as an RFC 6901 JSON Pointer. The root is "".
func (p Path) String() string {
	var sb strings.Builder
	for _, seg := range p {
		sb.WriteByte('/')
		if seg.IsIndex {
			sb.WriteString(strconv.Itoa(seg.Index))
			continue
		}
		sb.WriteString(pointerEscaper.Replace(seg.Key))
	}
	return sb.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
