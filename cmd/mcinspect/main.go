// Command mcinspect prints the contents of Minecraft NBT and Anvil files.
//
// Usage:
//
//	mcinspect nbt level.dat
//	mcinspect anvil r.0.0.mca
//	mcinspect anvil r.0.0.mca -x 3 -z 7
//	mcinspect anvil r.0.0.mca --verify --digest
package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		// Piping into head closes stdout early; that is not a failure.
		if errors.Is(err, syscall.EPIPE) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
