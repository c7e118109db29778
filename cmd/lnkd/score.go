package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lnkd/lnkd/internal/domain/score"
)

// Output formats of the score command.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputText  = "text"
)

type scoreFlags struct {
	queens     string
	tango      string
	zip        string
	backtracks string
	output     string
}

func newScoreCmd() *cobra.Command {
	f := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a score once and print its breakdown",
		Example: `  lnkd score --queens 2 --tango 3 --zip 1.5 --backtracks 2
  lnkd score --queens 45 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd.OutOrStdout(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.queens, "queens", "", "Queens time in seconds")
	flags.StringVar(&f.tango, "tango", "", "Tango time in seconds")
	flags.StringVar(&f.zip, "zip", "", "Zip time in seconds")
	flags.StringVar(&f.backtracks, "backtracks", "", "Zip backtrack count")
	flags.StringVarP(&f.output, "output", "o", outputTable, "Output format: table, json or text")

	return cmd
}

func runScore(w io.Writer, f *scoreFlags) error {
	res := score.Compute(score.Inputs{
		QueensTime:    f.queens,
		TangoTime:     f.tango,
		ZipTime:       f.zip,
		ZipBacktracks: f.backtracks,
	})

	switch strings.ToLower(f.output) {
	case outputTable:
		return renderTable(w, res)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case outputText:
		_, err := fmt.Fprintln(w, res.Breakdown.String())
		return err
	default:
		return fmt.Errorf("unknown output format %q (want table, json or text)", f.output)
	}
}

func renderTable(w io.Writer, res score.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Game", "Input", "Term", "Points")

	v := res.Values
	rows := [][]string{
		{"Queens", formatNumber(v.QueensTime), res.Breakdown.QueensPart, formatNumber(res.Contributions.Queens)},
		{"Tango", formatNumber(v.TangoTime), res.Breakdown.TangoPart, formatNumber(res.Contributions.Tango)},
		{"Zip", formatNumber(v.ZipTime), res.Breakdown.ZipPart, formatNumber(res.Contributions.Zip)},
		{"Backtracks", strconv.FormatInt(v.ZipBacktracks, 10), res.Breakdown.BacktracksPart, formatNumber(res.Contributions.Backtracks)},
		{"Total", "", "", res.Display},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	for _, fb := range v.Fallbacks {
		if _, err := fmt.Fprintf(w, "note: %s was %s, counted as 0\n", fb.Field, fb.Reason); err != nil {
			return err
		}
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
