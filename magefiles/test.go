//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, cover, short).
type Test mg.Namespace

// defaultCoverFile receives the coverage profile unless COVER_FILE points
// somewhere else, which lets each environment keep its own profile.
const defaultCoverFile = "coverage.out"

func coverFile() string {
	if v := os.Getenv("COVER_FILE"); v != "" {
		return v
	}
	return defaultCoverFile
}

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs only unit tests, excluding the tests/ directory.
func (Test) Unit() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, pkgs...)
	return sh.RunV(binGo, args...)
}

// Cover runs all tests with a coverage profile. The profile path defaults to
// coverage.out and is overridden by the COVER_FILE environment variable.
func (Test) Cover() error {
	return sh.RunV(binGo, "test", "-coverprofile="+coverFile(), "-covermode=atomic", "./...")
}

// Short runs the short test subset. Tests matching the SKIP environment
// variable (a go test -skip regexp) are excluded on top of -short.
func (Test) Short() error {
	args := []string{"test", "-short"}
	if skip := os.Getenv("SKIP"); skip != "" {
		args = append(args, "-skip", skip)
	}
	args = append(args, "./...")
	return sh.RunV(binGo, args...)
}

// unitPackages lists the module packages outside the tests/ directory.
func unitPackages() ([]string, error) {
	out, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for _, pkg := range strings.Split(out, "\n") {
		if pkg != "" && !strings.Contains(pkg, "/tests/") && !strings.HasSuffix(pkg, "/tests") {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}
