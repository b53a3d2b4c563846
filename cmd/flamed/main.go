package main

import (
	"fmt"
	"os"
)

// Files:
// - cli.go      (buildRootCmdWith, persistent flags, config resolution)
// - serve.go    (serve: registry -> manager -> HTTP server, graceful shutdown)
// - generate.go (generate: stream one completion to stdout)
// - models.go   (models: list descriptors)
// - logenv.go   (newLogger, envStr, envInt, splitCSV)
// - docs.go     (swag general API info)
func main() {
	root := buildRootCmdWith(&options{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
