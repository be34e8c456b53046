// Package catalog holds the read-only story definitions.
//
// Stories are authored as CUE files - the built-ins are embedded in the
// binary, and external packs can be loaded from a directory. Every story is
// unified with the #Story schema (schema.cue) before it is decoded, so a
// malformed definition is rejected at load with a file-positioned error
// rather than surfacing mid-game.
package catalog
