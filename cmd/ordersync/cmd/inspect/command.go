// Package inspect provides the inspect command implementation.
package inspect

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordersync/cmd/application"
	"github.com/agentstation/ordersync/internal/cmd/output"
	"github.com/agentstation/ordersync/internal/cmd/table"
	"github.com/agentstation/ordersync/pkg/schema"
)

// IndexReport is the structured shape printed by inspect index.
type IndexReport struct {
	Store      string   `json:"store" yaml:"store"`
	Rows       int      `json:"rows" yaml:"rows"` // data rows, header excluded
	Orders     int      `json:"orders" yaml:"orders"`
	Items      int      `json:"items" yaml:"items"`
	NextSerial int      `json:"next_serial" yaml:"next_serial"`
	OrderIDs   []string `json:"order_ids,omitempty" yaml:"order_ids,omitempty"`
}

// TableData lays the report out as properties, followed by one row per order id.
func (r IndexReport) TableData() table.Data {
	pairs := [][2]string{
		{"Store", r.Store},
		{"Rows", strconv.Itoa(r.Rows)},
		{"Orders", strconv.Itoa(r.Orders)},
		{"Items", strconv.Itoa(r.Items)},
		{"Next serial", strconv.Itoa(r.NextSerial)},
	}
	for _, id := range r.OrderIDs {
		pairs = append(pairs, [2]string{"Order", id})
	}
	return table.PropertiesToTableData(pairs)
}

// NewCommand creates the inspect command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspect",
		GroupID: "core",
		Short:   "Inspect the sheet and its layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newIndexCommand(app))
	cmd.AddCommand(newSchemaCommand(app))
	return cmd
}

func newIndexCommand(app application.Application) *cobra.Command {
	var withIDs bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Show the orders already in the sheet and the next serial number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := client.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			report := IndexReport{
				Store:      snap.Store,
				Rows:       max(snap.Index.Rows()-1, 0),
				Orders:     snap.Index.Orders(),
				Items:      snap.Index.Items(),
				NextSerial: snap.NextSerial,
			}
			if withIDs {
				report.OrderIDs = snap.Index.OrderIDs()
			}

			format := app.OutputFormat()
			var data any = report
			if format.IsTabular() {
				data = report.TableData()
			}
			return output.Write(cmd.OutOrStdout(), format, data)
		},
	}

	cmd.Flags().BoolVar(&withIDs, "ids", false, "list every known order id")
	return cmd
}

func newSchemaCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the column layout as YAML",
		Long: `Schema prints the configured column layout. The output can be edited and
loaded back with layout: path/to/file.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Schema()
			if err != nil {
				return err
			}
			data, err := schema.Marshal(s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
