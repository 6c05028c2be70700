package main

import (
	"fmt"
	"os"

	"github.com/andy/invoicer/internal/cli"
)

func main() {
	// The app is opened lazily by the root command, so --help never
	// asks for the database key
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
