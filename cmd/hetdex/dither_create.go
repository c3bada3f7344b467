// The dither command creates dither files for an IFU.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hetdex-collaboration/gohetdex/pkg/dither"
	"github.com/hetdex-collaboration/gohetdex/pkg/fplane"
	"github.com/hetdex-collaboration/gohetdex/pkg/telescope"
)

var ditherCmd = &cobra.Command{
	Use:   "dither",
	Short: "Work with dither files",
}

// dither create flag values.
var (
	flagDitherOutfile     string
	flagDitherModelbases  []string
	flagDitherIDType      string
	flagDitherFWHM        float64
	flagDitherOrderBy     string
	flagDitherUseHetpupil bool
	flagDitherExtension   string
	flagDitherPos         []float64
	flagDitherPosFile     string
)

var ditherCreateCmd = &cobra.Command{
	Use:   "create <id> <fplane> <basename>...",
	Short: "Produce a dither file for the given IFU",
	Long: `Produce a dither file for the given IFU. The {dither} and {id}
placeholders in basenames, modelbases and the output file name are replaced
by the dither number and the provided id. The number of basenames and
modelbases must be either one or the number of dithers.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runDitherCreate,
}

func init() {
	f := ditherCreateCmd.Flags()
	f.StringVarP(&flagDitherOutfile, "outfile", "o", "dither_{id}.txt",
		"output file name; accepts the {id} and {dither} placeholders, where {dither} is the number of dithers")
	f.StringSliceVarP(&flagDitherModelbases, "modelbases", "m", []string{"masterflat_{id}"},
		"basename(s) of the model files; one or as many as the dithers")
	f.StringVarP(&flagDitherIDType, "id-type", "t", "ifuslot",
		"type of the id (ifuid, ifuslot, specid)")
	f.Float64Var(&flagDitherFWHM, "fwhm", 1.6,
		"FWHM of the shot in arcseconds (constant FWHM model)")
	f.StringVarP(&flagDitherOrderBy, "order-by", "O", "",
		"order the basenames by the value of this FITS header keyword")
	f.BoolVar(&flagDitherUseHetpupil, "use-hetpupil", false,
		"use $CUREBIN/hetpupil to derive the relative illumination from the basename files")
	f.StringVarP(&flagDitherExtension, "extension", "e", "_L.fits",
		"extension appended to the basenames to build valid file names")
	f.Float64SliceVarP(&flagDitherPos, "ditherpos", "d", []float64{0.000, -1.270, -1.270, 0.000, 0.730, -0.730},
		"dither positions: x shifts followed by y shifts")
	f.StringVarP(&flagDitherPosFile, "ditherpos-file", "f", "",
		"file with dither shifts per IFU (id x1 x2 ... xn y1 y2 ... yn); overrides --ditherpos")
	ditherCreateCmd.MarkFlagsMutuallyExclusive("ditherpos", "ditherpos-file")

	ditherCmd.AddCommand(ditherCreateCmd)
}

func runDitherCreate(cmd *cobra.Command, args []string) error {
	id, fplaneFile, basenames := args[0], args[1], args[2:]
	idtype := fplane.IDType(flagDitherIDType)

	shot := telescope.NewShot(flagDitherFWHM)

	creator, err := buildCreator(fplaneFile, shot, id)
	if err != nil {
		return err
	}

	dxs, err := creator.Dxs(id, idtype)
	if err != nil {
		return err
	}
	nDithers := len(dxs)

	if !dither.CheckCounts(nDithers, basenames, flagDitherModelbases) {
		return fmt.Errorf("the number of basenames and modelbases must be"+
			" either one or the number of dithers (%d)", nDithers)
	}

	basenames = dither.FormatNames(basenames, nDithers, id)
	modelbases := dither.FormatNames(flagDitherModelbases, nDithers, id)

	if flagDitherOrderBy != "" {
		basenames, err = dither.SortBasenames(basenames, flagDitherExtension, flagDitherOrderBy)
		if err != nil {
			return err
		}
	}

	if flagDitherUseHetpupil {
		files := make([]string, len(basenames))
		for i, bn := range basenames {
			files[i] = bn + flagDitherExtension
		}
		model, err := telescope.NewHetpupilModel(files, true)
		if err != nil {
			return err
		}
		shot.IlluminationModel = model
	}

	outfile := strings.ReplaceAll(flagDitherOutfile, "{id}", id)
	outfile = strings.ReplaceAll(outfile, "{dither}", strconv.Itoa(nDithers))

	if err := creator.Create(id, basenames, modelbases, outfile, idtype); err != nil {
		return err
	}

	log.Info().Str("outfile", outfile).Int("dithers", nDithers).Msg("dither file created")
	return nil
}

// buildCreator assembles the dither creator from either the positions file or
// the --ditherpos values keyed by the requested id.
func buildCreator(fplaneFile string, shot *telescope.Shot, id string) (*dither.Creator, error) {
	if flagDitherPosFile != "" {
		return dither.NewCreatorFromFile(fplaneFile, shot, flagDitherPosFile)
	}

	if len(flagDitherPos)%2 != 0 {
		return nil, fmt.Errorf("--ditherpos needs an even number of values, got %d", len(flagDitherPos))
	}
	n := len(flagDitherPos) / 2
	pos := dither.Position{
		ID: id,
		Dx: flagDitherPos[:n],
		Dy: flagDitherPos[n:],
	}
	return dither.NewCreator(fplaneFile, shot, []dither.Position{pos})
}
