package sim

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

type engineMetrics struct {
	laps   metric.Int64Counter
	events metric.Int64Counter
}

func newEngineMetrics(l *log.Logger) *engineMetrics {
	meter := otel.GetMeterProvider().Meter("rsm.sim")
	fallback := noop.Meter{}
	laps, err := meter.Int64Counter("rsm.sim.laps",
		metric.WithDescription("Number of simulated laps"),
		metric.WithUnit("{lap}"))
	if err != nil {
		l.Warn("failed to register metric", log.String("metric", "rsm.sim.laps"),
			log.ErrorField(err))
		laps, _ = fallback.Int64Counter("rsm.sim.laps")
	}
	events, err := meter.Int64Counter("rsm.sim.events",
		metric.WithDescription("Number of race events by category"),
		metric.WithUnit("{event}"))
	if err != nil {
		l.Warn("failed to register metric", log.String("metric", "rsm.sim.events"),
			log.ErrorField(err))
		events, _ = fallback.Int64Counter("rsm.sim.events")
	}
	return &engineMetrics{laps: laps, events: events}
}

func (m *engineMetrics) lapCompleted(ctx context.Context, track string) {
	m.laps.Add(ctx, 1, metric.WithAttributes(attribute.String("track", track)))
}

//nolint:whitespace // can't make both editor and linter happy
func (m *engineMetrics) eventLogged(
	ctx context.Context, category model.EventCategory,
) {
	m.events.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", string(category))))
}
