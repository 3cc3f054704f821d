package main

import (
	"os"

	"github.com/ca-srg/osrequests/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
