package main

import (
	"os"

	"PairFeed/cmd/pairfeed/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
