// Package infra contains technical adapters such as the SQLite job store,
// the MQTT schedule publisher and metrics exporters. These packages should
// depend only on the interfaces defined in the core packages.
package infra
