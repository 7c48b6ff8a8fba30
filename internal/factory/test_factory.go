package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/rajamantri/internal/dependencies/mocks"
	"github.com/mcoot/rajamantri/internal/metrics"
	"github.com/mcoot/rajamantri/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDGenerator

	// Registry holds the app's metrics
	Registry *prometheus.Registry
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// With no queued random values, roles are dealt in join order:
// Raja, Mantri, Chor, Sipahi.
func NewTestApp() *TestApp {
	return newTestApp(true)
}

// NewTestAppWithoutAutoAssign is NewTestApp with manual role assignment
func NewTestAppWithoutAutoAssign() *TestApp {
	return newTestApp(false)
}

func newTestApp(autoAssign bool) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDGenerator()
	registry := prometheus.NewRegistry()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, mockIDs, metrics.New(registry), autoAssign, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		Registry:   registry,
	}
}
