// Command grove is the terminal task manager's entry point: thin wiring
// over internal/config, internal/store and internal/exportimport, per
// SPEC_FULL.md §4.8. It resolves the data/export paths, opens the store
// engine, and would hand it off to a UI loop — the terminal rendering and
// key-binding dispatch are out of scope for this repository (SPEC_FULL.md
// §1, Out of scope).
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
