// Command affine-tools hosts the AFFiNE document tools outside an agent
// runtime: it lists them, runs single calls, and serves XML tool calls
// read from stdin.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
