// Package metrics defines the events recorded for every scheduling run and
// the sink interfaces implemented by the Prometheus and InfluxDB adapters.
// Sinks are built from configuration through a registry; several configured
// sinks are combined into a MultiSink.
package metrics
