package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vbonduro/placeoffers/internal/service"

// newTracer reads the global provider at construction so a provider
// installed before NewPlaceService is the one that records.
func newTracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerName)
}
