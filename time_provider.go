package trialseq

import "time"

// TimeProvider supplies the clock used by the engine and its
// collaborators: the unseeded RNG path derives its seed from it, and
// sinks that persist trial data use it to timestamp records. Injecting
// a [MockTimeProvider] makes both deterministic in tests.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns today's date as YYYY-MM-DD.
	Today() string

	// Format returns the current time formatted with the given Go
	// time layout.
	Format(layout string) string
}

// DefaultTimeProvider is the standard TimeProvider using the system
// clock.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

// Now returns the current system time.
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Today returns today's date as YYYY-MM-DD.
func (p *DefaultTimeProvider) Today() string {
	return p.Now().Format("2006-01-02")
}

// Format returns the current time formatted with the given layout.
func (p *DefaultTimeProvider) Format(layout string) string {
	return p.Now().Format(layout)
}

// MockTimeProvider is a TimeProvider that returns a fixed time.
// Useful for testing time-dependent behavior such as default seeding
// and sink timestamps.
type MockTimeProvider struct {
	fixedTime time.Time
}

// NewMockTimeProvider creates a MockTimeProvider with the given fixed
// time.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixedTime: t}
}

// SetTime updates the fixed time returned by Now().
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.fixedTime = t
}

// Advance moves the fixed time forward by d.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.fixedTime = m.fixedTime.Add(d)
}

// Now returns the fixed time.
func (m *MockTimeProvider) Now() time.Time {
	return m.fixedTime
}

// Today returns the fixed date as YYYY-MM-DD.
func (m *MockTimeProvider) Today() string {
	return m.fixedTime.Format("2006-01-02")
}

// Format returns the fixed time formatted with the given layout.
func (m *MockTimeProvider) Format(layout string) string {
	return m.fixedTime.Format(layout)
}

// Compile-time checks that both providers implement TimeProvider.
var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
)
