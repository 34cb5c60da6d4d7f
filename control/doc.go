// Package control provides the ambient configuration, hot-reload,
// metrics, and debug-introspection substrate shared by the registry and
// dispatcher: a thread-safe config store with synchronous reload hooks,
// a metrics snapshot registry, and a named-probe debug dumper.
//
// Provides concurrent-safe state handling primitives including:
//   - Immutable snapshot config reads and atomic updates
//   - Runtime observers for hot-reload
//   - Metrics telemetry contracts
//   - State export, debug hooks, and probe registration
package control
