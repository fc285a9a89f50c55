// Package main provides build targets for sensemap using Mage.
//
// Usage:
//
//	mage build       Compile the sensemap binary to bin/
//	mage test:all    Run every test
//	mage test:unit   Run tests in short mode
//	mage test:race   Run tests with the race detector
//	mage test:cover  Write a coverage profile to bin/coverage.out
//	mage lint        Check gofmt, then run golangci-lint
//	mage clean       Remove build artifacts
//	mage install     Install sensemap to GOPATH/bin
//	mage stats       Print Go LOC per package group
package main

// Binary names.
const (
	binGo    = "go"
	binGit   = "git"
	binLint  = "golangci-lint"
	binGofmt = "gofmt"
)

// Build layout.
const (
	binaryName  = "sensemap"
	binaryDir   = "bin"
	cmdDir      = "./cmd/sensemap"
	modulePath  = "github.com/mesh-intelligence/sensemap"
	versionVar  = modulePath + "/internal/cli.Version"
	coverOutput = "coverage.out"
)
