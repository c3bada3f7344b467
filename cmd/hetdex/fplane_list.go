// The fplane command inspects focal plane files.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hetdex-collaboration/gohetdex/pkg/fplane"
)

var fplaneCmd = &cobra.Command{
	Use:   "fplane",
	Short: "Work with focal plane files",
}

var fplaneListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the IFUs of a focal plane file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fp, err := fplane.Parse(args[0])
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(fp.IFUs())
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "IFUSLOT\tX\tY\tSPECID\tIFUID")
		for _, ifu := range fp.IFUs() {
			fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%s\t%s\n",
				ifu.IFUSlot, ifu.X, ifu.Y, ifu.SpecID, ifu.IFUID)
		}
		return w.Flush()
	},
}

func init() {
	fplaneCmd.AddCommand(fplaneListCmd)
}
