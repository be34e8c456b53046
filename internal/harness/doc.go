// Package harness runs YAML playthrough scenarios against a real engine.
//
// A scenario starts one story from the built-in catalog, executes a sequence
// of player actions, and validates each step's outcome (error code, cash,
// shares) plus the final scorecard. Every run uses a throwaway store in a
// temp directory, a frozen clock, and a fixed run token, so the recorded
// trace is byte-for-byte reproducible and can be compared against golden
// files with goldie.
package harness
