// Command sentinel is the declarative service-availability monitor: it
// probes configured HTTP(S) endpoints on a recurring schedule, classifies
// each probe, appends outcomes to a historical log, and publishes a
// current-status snapshot.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
