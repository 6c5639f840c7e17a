// Package report renders run results for people and machines.
//
// A Sink consumes the final results once a run is over. LiveListener is the
// streaming counterpart: it sits on the bus and prints each unit outcome as it
// arrives.
package report
