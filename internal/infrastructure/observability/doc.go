// Package observability provides metrics and tracing for the canvas engine.
//
// Metrics live on a Collector that owns its own prometheus registry, so any
// number of collectors can coexist in one process (tests create one each).
// A nil *Collector is valid and records nothing.
//
// Tracing is plain OpenTelemetry. InitTracing installs an SDK provider that
// exports over OTLP/gRPC; when tracing is disabled the global no-op provider
// stays in place and spans cost nothing.
package observability
