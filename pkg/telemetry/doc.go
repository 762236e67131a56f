// Package telemetry bootstraps the process-wide OpenTelemetry tracer
// provider. Tracing is optional: with no OTLP endpoint configured the setup
// is a no-op and the proxy runs untraced.
package telemetry
