// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// A run loads the suite manifests, executes them through the engine with the
// configured strategy and hands the results to the report sinks. Optional
// side channels (health check and metrics endpoints, remote event
// forwarding) are wired around the run from the same Config.
package app
