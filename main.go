package main

import (
	"os"

	"github.com/lexflowhq/lexflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
