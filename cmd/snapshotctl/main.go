// Command snapshotctl inspects and clears the persisted workout snapshot.
package main

import (
	"fmt"
	"os"

	"github.com/zahid-01/Running-Tracker/internal/snapshot"
)

func main() {
	if err := newRootCmd(os.Stdout, snapshot.Open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
