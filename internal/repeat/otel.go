package repeat

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "timeplus/internal/repeat"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
