// Package store persists the single game slot to disk.
//
// The store is deliberately small: one JSON file, replaced wholesale via a
// temp-write-then-rename so a concurrent reader never sees a torn write, and
// a best-effort .bak copy after each successful save. Reads are tolerant -
// an absent or corrupt file is treated as "no game in progress" rather than
// an error, favoring availability over strict validation.
//
// The design assumes a single engine instance mutating the store at a time;
// multiple writers against the same path are out of scope.
package store
