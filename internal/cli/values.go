package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cancerflow/pkg/pipeline"
)

// valuesCommand creates the values command, which lists the choices the
// dashboard offers for a filter column.
func (c *CLI) valuesCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "values COLUMN",
		Short: "List the distinct values of a column",
		Long: `List the distinct values of a column of the cleaned dataset, in the order
they first occur. These are the values accepted by --filter-value.`,
		Example: `  cancerflow values Gender --data participants.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(data)
			if err != nil {
				return err
			}
			ds, err := loadDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if args[0] == pipeline.RemoveFilter {
				printInfo("%q disables filtering and has no values", pipeline.RemoveFilter)
				return nil
			}
			values, err := ds.Table.UniqueValues(args[0])
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Println(v)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", dataUsage)
	return cmd
}
