// The catalog command manages the local shot catalog.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hetdex-collaboration/gohetdex/internal/catalog"
	"github.com/hetdex-collaboration/gohetdex/pkg/dither"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local shot catalog",
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogDeleteCmd)
}

// openCatalog resolves the data directory and opens the catalog. The caller
// must defer Close.
func openCatalog() (*catalog.Catalog, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	c := catalog.New()
	if err := c.Open(dataDir); err != nil {
		return nil, fmt.Errorf("open catalog in %s: %w", dataDir, err)
	}
	return c, nil
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <name> <dither-file>",
	Short: "Import a dither file as a shot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]

		d, err := dither.ParseFile(path)
		if err != nil {
			return err
		}

		c, err := openCatalog()
		if err != nil {
			return err
		}
		defer c.Close()

		id, err := c.ImportDither(name, d)
		if err != nil {
			return err
		}

		log.Info().Str("shot", name).Str("id", id).
			Int("dithers", len(d.Dithers())).Msg("shot imported")
		fmt.Println(id)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalogued shots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		defer c.Close()

		shots, err := c.Shots()
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(shots)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tIMPORTED")
		for _, s := range shots {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ShotID, s.Name, s.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id-or-name>",
	Short: "Show a shot and its dithers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		defer c.Close()

		shot, err := c.Shot(args[0])
		if errors.Is(err, catalog.ErrNotFound) {
			shot, err = c.ShotByName(args[0])
		}
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(shot)
		}

		fmt.Printf("shot %s (%s)\n", shot.Name, shot.ShotID)
		if shot.DitherFile != "" {
			fmt.Printf("  dither file: %s\n", shot.DitherFile)
		}
		fmt.Printf("  imported:    %s\n", shot.CreatedAt.Format(time.RFC3339))

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "  TAG\tBASENAME\tDX\tDY\tSEEING\tNORM\tAIRMASS")
		for _, d := range shot.Dithers {
			fmt.Fprintf(w, "  %s\t%s\t%.2f\t%.2f\t%.3f\t%.4f\t%.4f\n",
				d.Tag, d.Basename, d.Dx, d.Dy, d.Seeing, d.Norm, d.Airmass)
		}
		return w.Flush()
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a shot from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCatalog()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.DeleteShot(args[0]); err != nil {
			return err
		}
		log.Info().Str("id", args[0]).Msg("shot deleted")
		return nil
	},
}
