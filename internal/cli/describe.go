package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cancerflow/pkg/summary"
)

type describeOpts struct {
	data    string
	columns []string
	top     int
	json    bool
}

// describeCommand creates the describe command that prints dataset statistics.
func (c *CLI) describeCommand() *cobra.Command {
	opts := describeOpts{}

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print value frequencies and age statistics",
		Long: `Describe the cleaned dataset: row count, the age distribution and the
thresholds that split it into four ranges, and the most frequent values of
each column.`,
		Example: `  cancerflow describe --data participants.csv
  cancerflow describe --data participants.csv --column Therapy --top 20
  cancerflow describe --data participants.csv --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDescribe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", dataUsage)
	cmd.Flags().StringSliceVarP(&opts.columns, "column", "c", nil, "columns to describe (default: all)")
	cmd.Flags().IntVar(&opts.top, "top", 10, "values shown per column (0 for all)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the full summary as JSON")

	return cmd
}

func (c *CLI) runDescribe(ctx context.Context, opts describeOpts) error {
	cfg, err := c.loadConfig(opts.data)
	if err != nil {
		return err
	}
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}

	s, err := summary.Summarize(ds)
	if err != nil {
		return err
	}
	if len(opts.columns) > 0 {
		cols := make([]summary.ColumnSummary, 0, len(opts.columns))
		for _, name := range opts.columns {
			freq, err := summary.Frequencies(ds.Table, name)
			if err != nil {
				return err
			}
			cols = append(cols, summary.ColumnSummary{Name: name, Distinct: len(freq), Frequencies: freq})
		}
		s.Columns = cols
	}

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	printKeyValue("Rows", StyleNumber.Render(strconv.Itoa(s.Rows)))
	if s.Ages != nil {
		printNewline()
		fmt.Println(StyleTitle.Render("Age"))
		fmt.Println(renderTable(
			[]string{"Count", "Min", "Q1", "Median", "Q3", "Max", "Mean", "Std Dev"},
			[][]string{{
				strconv.Itoa(s.Ages.Count),
				fmtFloat(s.Ages.Min), fmtFloat(s.Ages.Q1), fmtFloat(s.Ages.Median),
				fmtFloat(s.Ages.Q3), fmtFloat(s.Ages.Max), fmtFloat(s.Ages.Mean), fmtFloat(s.Ages.StdDev),
			}},
			0, 1, 2, 3, 4, 5, 6, 7,
		))
		if s.Buckets != nil {
			printDetail("Age ranges split at %s, %s and %s",
				fmtFloat(s.Buckets.Q1), fmtFloat(s.Buckets.Median), fmtFloat(s.Buckets.Q3))
		}
	}

	for _, col := range s.Columns {
		printNewline()
		fmt.Println(StyleTitle.Render(col.Name) + " " + StyleDim.Render(fmt.Sprintf("(%d distinct)", col.Distinct)))
		fmt.Println(renderTable([]string{"Value", "Count", "Share"}, frequencyRows(col.Frequencies, s.Rows, opts.top), 1, 2))
		if opts.top > 0 && col.Distinct > opts.top {
			printDetail("%d more values", col.Distinct-opts.top)
		}
	}
	return nil
}

// frequencyRows formats at most top frequencies as table rows. A top of
// zero or less keeps every row.
func frequencyRows(freq []summary.Frequency, total, top int) [][]string {
	if top > 0 && len(freq) > top {
		freq = freq[:top]
	}
	rows := make([][]string, 0, len(freq))
	for _, f := range freq {
		share := 0.0
		if total > 0 {
			share = 100 * float64(f.Count) / float64(total)
		}
		rows = append(rows, []string{f.Value, strconv.Itoa(f.Count), fmt.Sprintf("%.1f%%", share)})
	}
	return rows
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
