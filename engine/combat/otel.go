package combat

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/1siamBot/rts-combat/engine/combat"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics counts attacks and dealt damage on the global meter provider.
type Metrics struct {
	attacks metric.Int64Counter
	damage  metric.Int64Counter
	kills   metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	m := meter()
	var (
		mt  Metrics
		err error
	)
	mt.attacks, err = m.Int64Counter(
		"combat.attacks",
		metric.WithDescription("Attacks performed, direct hits and launched attack objects"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating attack counter: %w", err)
	}
	mt.damage, err = m.Int64Counter(
		"combat.damage",
		metric.WithDescription("Health removed by attacks"),
		metric.WithUnit("{hp}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage counter: %w", err)
	}
	mt.kills, err = m.Int64Counter(
		"combat.kills",
		metric.WithDescription("Entities destroyed by damage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kill counter: %w", err)
	}
	return &mt, nil
}

func (m *Metrics) attack(code string, direct bool) {
	if m == nil {
		return
	}
	m.attacks.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("attack", code),
		attribute.Bool("direct", direct),
	))
}

func (m *Metrics) dealt(amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.damage.Add(context.Background(), int64(amount))
}

func (m *Metrics) kill() {
	if m == nil {
		return
	}
	m.kills.Add(context.Background(), 1)
}
