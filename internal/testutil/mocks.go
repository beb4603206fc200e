package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/snonux/jsontranslate/internal/translation"
)

// MockTranslator mocks a translation provider. It is safe for concurrent use.
// Texts without an entry in Translations come back as "[lang] text".
type MockTranslator struct {
	Translations map[string]string
	Notes        map[string]string
	Errors       map[string]error
	// Identity returns every text unchanged.
	Identity bool
	// Delay is waited before answering, or until the context ends.
	Delay time.Duration

	mu          sync.Mutex
	calls       []string
	inFlight    int
	maxInFlight int
}

// Translate mocks a provider call
func (m *MockTranslator) Translate(ctx context.Context, text, targetLang string) (translation.Translation, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return translation.Translation{}, ctx.Err()
		}
	}

	if err, ok := m.Errors[text]; ok {
		return translation.Translation{}, err
	}

	out := translation.Translation{Note: m.Notes[text]}
	switch t, ok := m.Translations[text]; {
	case ok:
		out.Text = t
	case m.Identity:
		out.Text = text
	default:
		out.Text = fmt.Sprintf("[%s] %s", targetLang, text)
	}
	return out, nil
}

// Name returns the provider name
func (m *MockTranslator) Name() string { return "mock" }

// IsAvailable always succeeds
func (m *MockTranslator) IsAvailable() error { return nil }

// Calls returns the texts passed to Translate in call order.
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns the number of Translate calls.
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MaxInFlight returns the highest number of concurrent Translate calls seen.
func (m *MockTranslator) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}
