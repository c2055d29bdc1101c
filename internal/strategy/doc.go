// Package strategy persists nfqws strategies.
//
// Strategies are stored as a flat array of double-quoted strings, one per
// line:
//
//	[
//	  "--dpi-desync=fake --dpi-desync-ttl=5",
//	  "--dpi-desync=split2"
//	]
//
// Only `"` is escaped. Decoding drops the backslash in front of any other
// character, so a literal backslash does not survive a round trip. Existing
// store files depend on this format and it is kept as is.
//
// Store writes are atomic and Import never leaves a partially written store.
// Watcher reports changes to the store file.
package strategy
