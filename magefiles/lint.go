package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

// Lint fails on unformatted Go files, then runs golangci-lint.
func Lint() error {
	out, err := sh.Output(binGofmt, "-l", "cmd", "internal", "pkg", "magefiles")
	if err != nil {
		return err
	}
	if files := strings.TrimSpace(out); files != "" {
		return fmt.Errorf("files need gofmt:\n%s", files)
	}
	return sh.RunV(binLint, "run", "./...")
}
