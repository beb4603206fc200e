// Package policy decides which string leaves of a document are sent for
// translation and which are kept verbatim.
package policy

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Reason explains a decision of the policy.
type Reason int

const (
	Translate Reason = iota
	Blank
	Marked
	SkippedKey
	Pattern
	TargetScript
)

func (r Reason) String() string {
	switch r {
	case Translate:
		return "translate"
	case Blank:
		return "blank"
	case Marked:
		return "marked"
	case SkippedKey:
		return "skipped key"
	case Pattern:
		return "pattern"
	case TargetScript:
		return "already in target script"
	default:
		return "unknown"
	}
}

// DefaultPatterns match values that look like identifiers, links, codes or
// bare placeholders rather than prose.
var DefaultPatterns = []string{
	// URL with a scheme, or a bare www host
	`^[A-Za-z][A-Za-z0-9+.\-]*://\S+$`,
	`^www\.\S+\.\S+$`,
	// e-mail
	`^[^\s@]+@[^\s@]+\.[^\s@]+$`,
	// UUID
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`,
	// hex colour
	`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`,
	// snake_case, dotted.key, CONSTANT_CASE, camelCase
	`^[a-z0-9]+(?:[_.][a-z0-9]+)+$`,
	`^[A-Z0-9]+(?:_[A-Z0-9]+)+$`,
	`^[a-z]+(?:[A-Z][a-z0-9]*)+$`,
	// nothing but placeholders: {{name}}, ${name}, {0}, %s
	`^(?:\s*(?:\{\{[^{}]*\}\}|\$\{[^{}]*\}|\{[^{}]*\}|%[sdvf]))+\s*$`,
	// numbers, dates, phone numbers and similar codes
	`^[\d\s.,:;%+\-/#()\[\]]+$`,
}

// DefaultSkipKeys name object members whose string values are metadata.
var DefaultSkipKeys = []string{"id", "slug", "url", "href", "src"}

// Config configures a Policy.
type Config struct {
	// UseDefaults enables DefaultPatterns in addition to Patterns.
	UseDefaults bool
	Patterns    []string
	SkipKeys    []string
	// Marker prefixes strings that must never be translated.
	Marker         string
	TargetLanguage string
	// SkipTargetScript keeps strings that are already written entirely in the
	// script of TargetLanguage. It has no effect for Latin-script targets.
	SkipTargetScript bool
}

// Policy is immutable once built and safe for concurrent use.
type Policy struct {
	patterns []*regexp.Regexp
	skipKeys map[string]struct{}
	marker   string
	script   []*unicode.RangeTable
}

// New compiles cfg into a Policy.
func New(cfg Config) (*Policy, error) {
	p := &Policy{
		skipKeys: make(map[string]struct{}, len(cfg.SkipKeys)),
		marker:   cfg.Marker,
	}

	sources := cfg.Patterns
	if cfg.UseDefaults {
		sources = append(append([]string{}, DefaultPatterns...), cfg.Patterns...)
	}
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("policy: invalid pattern %q: %w", src, err)
		}
		p.patterns = append(p.patterns, re)
	}

	for _, k := range cfg.SkipKeys {
		p.skipKeys[strings.ToLower(k)] = struct{}{}
	}

	if cfg.SkipTargetScript && cfg.TargetLanguage != "" {
		tables, err := scriptTables(cfg.TargetLanguage)
		if err != nil {
			return nil, err
		}
		p.script = tables
	}

	return p, nil
}

// Decide classifies text found under the object member key. Array elements
// carry the key of the nearest enclosing member; top-level values use "".
func (p *Policy) Decide(key, text string) Reason {
	if strings.TrimSpace(text) == "" {
		return Blank
	}
	if p.marker != "" && strings.HasPrefix(text, p.marker) {
		return Marked
	}
	if _, ok := p.skipKeys[strings.ToLower(key)]; ok && key != "" {
		return SkippedKey
	}

	trimmed := strings.TrimSpace(text)
	for _, re := range p.patterns {
		if re.MatchString(trimmed) {
			return Pattern
		}
	}

	if len(p.script) > 0 && inScript(trimmed, p.script) {
		return TargetScript
	}
	return Translate
}

// Eligible reports whether text should be translated.
func (p *Policy) Eligible(key, text string) bool {
	return p.Decide(key, text) == Translate
}

func inScript(s string, tables []*unicode.RangeTable) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.In(r, tables...) {
			return false
		}
	}
	return letters > 0
}
