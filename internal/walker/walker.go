// Package walker finds the translatable string leaves of a JSON document and
// rebuilds a document of the same shape from their translations.
package walker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"codeberg.org/snonux/jsontranslate/internal/domain"
	"codeberg.org/snonux/jsontranslate/internal/jsontree"
	"codeberg.org/snonux/jsontranslate/internal/policy"
)

// Unit is one eligible string leaf.
type Unit struct {
	// Ordinal is the position of the leaf among all eligible leaves in
	// depth-first document order.
	Ordinal int
	Path    jsontree.Path
	Key     string
	// Text is the leaf with surrounding whitespace removed. The whitespace
	// is restored around the translation.
	Text string

	original string
	lead     string
	trail    string
}

// Outcome is the translation of one unit.
type Outcome struct {
	Text string
	Note string
	Err  error
}

// TranslateFunc translates a single text.
type TranslateFunc func(ctx context.Context, text string) (translated, note string, err error)

// Walker is safe for concurrent use; it holds no per-document state.
type Walker struct {
	policy   *policy.Policy
	maxDepth int
	logger   *slog.Logger
}

// New returns a Walker using p for eligibility. maxDepth <= 0 disables the
// depth check.
func New(p *policy.Policy, maxDepth int) *Walker {
	return &Walker{policy: p, maxDepth: maxDepth}
}

// WithLogger returns a copy of w that logs kept leaves and their reason at
// debug level.
func (w *Walker) WithLogger(l *slog.Logger) *Walker {
	c := *w
	c.logger = l
	return &c
}

// Collect returns the eligible leaves of v in depth-first order: object
// members in declared order, array elements by index.
func (w *Walker) Collect(v jsontree.Value) ([]Unit, error) {
	c := &collector{w: w}
	if err := c.visit(v, nil, "", 0); err != nil {
		return nil, err
	}
	return c.units, nil
}

type collector struct {
	w     *Walker
	units []Unit
}

func (c *collector) visit(v jsontree.Value, path jsontree.Path, key string, depth int) error {
	switch x := v.(type) {
	case jsontree.Object:
		if err := c.w.checkDepth(depth + 1); err != nil {
			return err
		}
		for _, m := range x {
			if err := c.visit(m.Value, path.Child(jsontree.KeySegment(m.Key)), m.Key, depth+1); err != nil {
				return err
			}
		}
	case jsontree.Array:
		if err := c.w.checkDepth(depth + 1); err != nil {
			return err
		}
		for i, el := range x {
			if err := c.visit(el, path.Child(jsontree.IndexSegment(i)), key, depth+1); err != nil {
				return err
			}
		}
	case jsontree.String:
		s := string(x)
		if reason := c.w.policy.Decide(key, s); reason != policy.Translate {
			if c.w.logger != nil {
				c.w.logger.Debug("leaf kept", "path", path.String(), "reason", reason.String())
			}
			return nil
		}
		core, lead, trail := splitSpace(s)
		c.units = append(c.units, Unit{
			Ordinal:  len(c.units),
			Path:     path,
			Key:      key,
			Text:     core,
			original: s,
			lead:     lead,
			trail:    trail,
		})
	}
	return nil
}

func (w *Walker) checkDepth(depth int) error {
	if w.maxDepth > 0 && depth > w.maxDepth {
		return fmt.Errorf("%w (%d)", domain.ErrTooDeep, w.maxDepth)
	}
	return nil
}

// Rebuild returns a new document shaped like v in which the leaf of each unit
// is replaced by outcomes[unit.Ordinal]. A failed outcome keeps the original
// text. Notes are returned in document order. units must come from Collect(v).
func (w *Walker) Rebuild(v jsontree.Value, units []Unit, outcomes []Outcome) (jsontree.Value, []domain.Note) {
	r := &rebuilder{units: units, outcomes: outcomes}
	out := r.build(v, nil)
	return out, r.notes
}

type rebuilder struct {
	units    []Unit
	outcomes []Outcome
	next     int
	notes    []domain.Note
}

func (r *rebuilder) build(v jsontree.Value, path jsontree.Path) jsontree.Value {
	switch x := v.(type) {
	case jsontree.Object:
		obj := make(jsontree.Object, len(x))
		for i, m := range x {
			obj[i] = jsontree.Member{
				Key:   m.Key,
				Value: r.build(m.Value, path.Child(jsontree.KeySegment(m.Key))),
			}
		}
		return obj
	case jsontree.Array:
		arr := make(jsontree.Array, len(x))
		for i, el := range x {
			arr[i] = r.build(el, path.Child(jsontree.IndexSegment(i)))
		}
		return arr
	case jsontree.String:
		if r.next >= len(r.units) {
			return x
		}
		// Duplicate keys can repeat a path, so the text must match as well.
		if !samePath(r.units[r.next].Path, path) || r.units[r.next].original != string(x) {
			return x
		}
		u := r.units[r.next]
		r.next++
		return r.replace(u)
	}
	return v
}

func (r *rebuilder) replace(u Unit) jsontree.Value {
	if u.Ordinal >= len(r.outcomes) {
		return jsontree.String(u.original)
	}

	o := r.outcomes[u.Ordinal]
	if o.Err != nil {
		r.notes = append(r.notes, domain.Note{
			Path:    u.Path.String(),
			Kind:    domain.NoteFailure,
			Message: failureMessage(o.Err),
		})
		return jsontree.String(u.original)
	}

	if o.Note != "" {
		r.notes = append(r.notes, domain.Note{
			Path:    u.Path.String(),
			Kind:    domain.NoteClarification,
			Message: o.Note,
		})
	}
	return jsontree.String(u.lead + o.Text + u.trail)
}

func failureMessage(err error) string {
	var te *domain.TranslationError
	if errors.As(err, &te) {
		return te.Err.Error()
	}
	return err.Error()
}

func samePath(a, b jsontree.Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Walk translates every eligible leaf of v one after another with fn and
// returns the rebuilt document with its notes. A failing leaf keeps its
// original text and yields a failure note.
func (w *Walker) Walk(ctx context.Context, v jsontree.Value, fn TranslateFunc) (jsontree.Value, []domain.Note, error) {
	units, err := w.Collect(v)
	if err != nil {
		return nil, nil, err
	}

	outcomes := make([]Outcome, len(units))
	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
		}
		text, note, err := fn(ctx, u.Text)
		if err != nil {
			outcomes[i] = Outcome{Err: &domain.TranslationError{Path: u.Path.String(), Err: err}}
			continue
		}
		outcomes[i] = Outcome{Text: strings.TrimSpace(text), Note: strings.TrimSpace(note)}
	}

	out, notes := w.Rebuild(v, units, outcomes)
	return out, notes, nil
}

func splitSpace(s string) (core, lead, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return trimmed, lead, trail
}
