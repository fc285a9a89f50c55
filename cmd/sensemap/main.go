// Package main provides the sensemap CLI.
package main

import "github.com/mesh-intelligence/sensemap/internal/cli"

func main() {
	cli.Execute()
}
