// The fits command inspects FITS file headers.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hetdex-collaboration/gohetdex/internal/filetools"
	"github.com/hetdex-collaboration/gohetdex/internal/worker"
	"github.com/hetdex-collaboration/gohetdex/pkg/fits"
)

var fitsCmd = &cobra.Command{
	Use:   "fits",
	Short: "Work with FITS headers",
}

// fits header flag values.
var (
	flagFitsPattern   string
	flagFitsRecursive bool
	flagFitsWorkers   int
)

var fitsHeaderCmd = &cobra.Command{
	Use:   "header <keyword> <file-or-dir>...",
	Short: "Read a header keyword from FITS files",
	Long: `Read a header keyword from FITS files. Directory arguments are
scanned for files matching --pattern; the headers are read in parallel when
--workers is set. Files missing the keyword are reported and skipped.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFitsHeader,
}

func init() {
	f := fitsHeaderCmd.Flags()
	f.StringVarP(&flagFitsPattern, "pattern", "p", "*.fits",
		"glob matched against file names when scanning directories")
	f.BoolVarP(&flagFitsRecursive, "recursive", "r", false,
		"scan directories recursively")
	f.IntVarP(&flagFitsWorkers, "workers", "w", 0,
		"number of parallel header readers; 0 reads serially")

	fitsCmd.AddCommand(fitsHeaderCmd)
}

func runFitsHeader(cmd *cobra.Command, args []string) error {
	keyword, roots := args[0], args[1:]

	files, err := collectFitsFiles(roots)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matching %q", flagFitsPattern)
	}

	pool := worker.Get("fits-header",
		worker.WithWorkers(flagFitsWorkers), worker.WithAlwaysWait())
	defer worker.Remove("fits-header")

	for _, file := range files {
		pool.Apply(func() (any, error) {
			return fits.GetVal(file, keyword)
		})
	}

	values, err := pool.Results(true)
	if err != nil {
		return err
	}

	completed, errored, total := pool.Stats()
	log.Debug().Int("completed", completed).Int("errored", errored).
		Int("total", total).Msg("header reads finished")

	if flagJSON {
		type result struct {
			File  string `json:"file"`
			Value string `json:"value,omitempty"`
			Error string `json:"error,omitempty"`
		}
		results := make([]result, len(files))
		for i, file := range files {
			results[i].File = file
			switch v := values[i].(type) {
			case error:
				results[i].Error = v.Error()
			case string:
				results[i].Value = v
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for i, file := range files {
		switch v := values[i].(type) {
		case error:
			fmt.Fprintf(w, "%s\t<%v>\n", file, v)
		case string:
			fmt.Fprintf(w, "%s\t%s\n", file, v)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if errored > 0 {
		return fmt.Errorf("%d of %d files failed", errored, total)
	}
	return nil
}

// collectFitsFiles expands the roots into FITS file paths: files pass
// through, directories are scanned for --pattern matches.
func collectFitsFiles(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		matches, err := filetools.ScanFiles(os.DirFS(root), ".", flagFitsPattern, flagFitsRecursive)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
		for _, m := range matches {
			files = append(files, root+string(os.PathSeparator)+m)
		}
	}
	return files, nil
}
