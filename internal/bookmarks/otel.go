package bookmarks

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "timeplus/internal/bookmarks"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
