// The ifu command inspects IFU center files.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hetdex-collaboration/gohetdex/pkg/ifucenter"
)

var ifuCmd = &cobra.Command{
	Use:   "ifu",
	Short: "Work with IFU center files",
}

var ifuInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarize an IFU center file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ifucenter.Parse(args[0])
		if err != nil {
			return err
		}

		if flagJSON {
			type summary struct {
				IFUID    int            `json:"ifuid"`
				FiberD   float64        `json:"fiber_d"`
				FiberSep float64        `json:"fiber_sep"`
				NFibX    int            `json:"nfibx"`
				NFibY    int            `json:"nfiby"`
				NFibers  map[string]int `json:"n_fibers"`
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary{
				IFUID:    c.IFUID,
				FiberD:   c.FiberD,
				FiberSep: c.FiberSep,
				NFibX:    c.NFibX,
				NFibY:    c.NFibY,
				NFibers:  c.NFibers,
			})
		}

		fmt.Printf("IFU %05d (%s)\n", c.IFUID, c.Filename)
		fmt.Printf("  fiber diameter:  %g\n", c.FiberD)
		fmt.Printf("  fiber separation: %g\n", c.FiberSep)
		fmt.Printf("  fiber grid:      %d x %d\n", c.NFibX, c.NFibY)
		for _, ch := range c.Channels() {
			fmt.Printf("  channel %s: %d fibers\n", ch, c.NFibers[ch])
		}
		return nil
	},
}

func init() {
	ifuCmd.AddCommand(ifuInfoCmd)
}
