//go:build mage

// Package main provides build targets for the gohetdex project using Mage.
//
// Usage:
//
//	mage build        Compile the hetdex binary to bin/
//	mage test:all     Run all tests
//	mage test:unit    Run only unit tests (exclude integration)
//	mage test:cover   Run tests with a coverage profile (COVER_FILE override)
//	mage test:short   Run the short test subset (SKIP narrows further)
//	mage lint         Run golangci-lint
//	mage docs         Render package documentation to docs/
//	mage deploy       Copy docs and coverage to the configured directories
//	mage clean        Remove build artifacts
//	mage install      Install hetdex to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo       = "go"
	binaryName  = "hetdex"
	binaryDir   = "bin"
	cmdDir      = "./cmd/hetdex"
	projectName = "gohetdex"
)

// Build compiles the hetdex binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts and the rendered documentation.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.RemoveAll(docsDir); err != nil {
		return err
	}
	if err := os.Remove(coverFile()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
