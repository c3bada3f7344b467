//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

// docsDir is where Docs renders the package documentation.
const docsDir = "docs"

// Docs renders the documentation of every package into docs/, one text file
// per package.
func Docs() error {
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return err
	}

	pkgs, err := unitPackages()
	if err != nil {
		return err
	}

	module, err := sh.Output(binGo, "list", "-m")
	if err != nil {
		return err
	}

	for _, pkg := range pkgs {
		doc, err := sh.Output(binGo, "doc", "-all", pkg)
		if err != nil {
			return fmt.Errorf("documenting %s: %w", pkg, err)
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(pkg, module), "/")
		if rel == "" {
			rel = filepath.Base(module)
		}
		name := strings.ReplaceAll(rel, "/", "_") + ".txt"
		if err := os.WriteFile(filepath.Join(docsDir, name), []byte(doc+"\n"), 0o644); err != nil {
			return err
		}
	}

	fmt.Printf("Documented %d packages in %s/.\n", len(pkgs), docsDir)
	return nil
}
