// Package envmask computes byte-exact mask decorations for dotenv-style
// (EDF) text: which spans of a buffer look like secret values, and what
// text a host should draw over them instead.
//
// The package presents an explicit Engine value rather than a package-level
// singleton; a host embedding envmask creates one Engine at setup and
// passes it by reference to whatever layer calls Generate. Per-buffer
// decoration caches belong to the host, not the Engine -- Engine itself
// holds only its own parser cache (not shared with other Engines) and uses
// the process-global mask-string pool. It performs no I/O except in
// LoadConfig and WatchConfig, which read and watch a configuration file.
package envmask
