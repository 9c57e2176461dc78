// Package telemetry carries named numeric values out of the control loop.
//
// Table retains the latest value and a short history for dashboards and
// tests; LogSink mirrors values into the structured log; Multi fans out.
package telemetry
