// Command gatectl is the resident and security gate client for the community portal.
package main

import (
	"fmt"
	"os"

	"github.com/smartcommunity/portal/internal/client"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", client.Message(err))
		os.Exit(1)
	}
}
