// Package main is the single-binary entrypoint for Praxis.
package main

import "github.com/praxis-labs/praxis/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
