package main

import (
	"fmt"
	"os"

	"github.com/dannbuckley/intcode/cmd"
)

func main() {
	if err := cmd.Command().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "intcode: %s\n", err)
		os.Exit(1)
	}
}
