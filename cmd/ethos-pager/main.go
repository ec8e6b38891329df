// Command ethos-pager pages through an Ethos resource and prints its rows or
// pages, one JSON document per line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
