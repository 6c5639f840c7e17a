// Package engine is the orchestration layer of the application. It turns a
// set of bound group definitions into a plan, runs the plan with the selected
// strategy and returns the aggregated results once every event has been
// delivered.
//
// A run is processed in four phases:
//
//  1. Assembly: plan.Build wires the root, group and unit nodes.
//  2. Wiring: a fresh bus gets the result aggregator and any extra listeners.
//  3. Execution: the strategy is started, executes the plan and is shut down.
//  4. Drain: the bus is awaited, so the results are final when Process
//     returns.
package engine
