//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"

	"github.com/hetdex-collaboration/gohetdex/internal/paths"
	"github.com/hetdex-collaboration/gohetdex/pkg/config"
)

// Artifact types substituted for the {type} placeholder in the deploy
// directories.
const (
	artifactDoc   = "doc"
	artifactCover = "cover"
)

// Deploy copies the rendered documentation and the coverage profile to the
// directories named by the [deploy] config section. The configuration file is
// taken from HETDEX_CONFIG; directories left unset in the config skip the
// corresponding artifact.
func Deploy() error {
	configFile, err := paths.ResolveConfigFile("")
	if err != nil {
		return err
	}
	if configFile == "" {
		return fmt.Errorf("no configuration file; set %s", paths.EnvConfigFile)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configFile, err)
	}

	docDirs := cfg.DeployDirs(projectName, artifactDoc)
	if docDirs.DocDir == "" {
		fmt.Println("No doc_dir configured, skipping documentation.")
	} else if err := deployDocs(docDirs.DocDir); err != nil {
		return err
	}

	coverDirs := cfg.DeployDirs(projectName, artifactCover)
	if coverDirs.CoverDir == "" {
		fmt.Println("No cover_dir configured, skipping coverage.")
	} else if err := deployCover(coverDirs.CoverDir); err != nil {
		return err
	}
	return nil
}

// deployDocs copies every file under docs/ into dst.
func deployDocs(dst string) error {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no %s/ directory; run mage docs first", docsDir)
		}
		return err
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src := filepath.Join(docsDir, e.Name())
		if err := sh.Copy(filepath.Join(dst, e.Name()), src); err != nil {
			return err
		}
		n++
	}
	fmt.Printf("Deployed %d documentation files to %s.\n", n, dst)
	return nil
}

// deployCover copies the coverage profile into dst.
func deployCover(dst string) error {
	src := coverFile()
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no coverage profile %s; run mage test:cover first", src)
		}
		return err
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	if err := sh.Copy(filepath.Join(dst, filepath.Base(src)), src); err != nil {
		return err
	}
	fmt.Printf("Deployed coverage profile to %s.\n", dst)
	return nil
}
