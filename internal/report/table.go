// Package report renders bench results as terminal tables and HTML charts.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/bstset/internal/harness"
)

const (
	siDigits      = 2
	durationRound = time.Microsecond
)

// WriteTable writes results as an aligned table, in the order given.
func WriteTable(w io.Writer, results []harness.Result) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"Backend", "Ops", "Rounds", "Min", "Mean", "Throughput", "Len", "Arena slots"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	for _, result := range results {
		slots := "-"
		if result.ArenaSlots > 0 {
			slots = humanize.Comma(int64(result.ArenaSlots))
		}

		tbl.AppendRow(table.Row{
			result.Backend,
			humanize.Comma(int64(result.Ops)),
			result.Rounds,
			result.Min.Round(durationRound).String(),
			result.Mean.Round(durationRound).String(),
			humanize.SIWithDigits(result.OpsPerSecond(), siDigits, "op/s"),
			humanize.Comma(int64(result.Len)),
			slots,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d backends", len(results))})

	_, err := io.WriteString(w, tbl.Render()+"\n")
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}
