package movement

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/1siamBot/rts-combat/engine/movement"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics counts movement failures. Uses the global OTel meter (no-op if not configured).
type Metrics struct {
	invalidPaths metric.Int64Counter
	stuckStops   metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	m := meter()
	var (
		mt  Metrics
		err error
	)
	mt.invalidPaths, err = m.Int64Counter(
		"movement.invalid_paths",
		metric.WithDescription("Move requests that found no path after all retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating invalid path counter: %w", err)
	}
	mt.stuckStops, err = m.Int64Counter(
		"movement.stuck_stops",
		metric.WithDescription("Moves aborted by stuck detection"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stuck counter: %w", err)
	}
	return &mt, nil
}

func (m *Metrics) invalidPath(mode Mode) {
	if m == nil {
		return
	}
	m.invalidPaths.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", mode.String())))
}

func (m *Metrics) stuck() {
	if m == nil {
		return
	}
	m.stuckStops.Add(context.Background(), 1)
}
