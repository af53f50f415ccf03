package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelang/pipelang/internal/cli/config"
	"github.com/pipelang/pipelang/pkg/catalog"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the columns of a table in the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetCurrentConfig()
			logger := config.GetLogger(cmd.Context())

			var (
				inspector catalog.Inspector
				err       error
			)
			switch cfg.Dialect {
			case "sqlite":
				inspector, err = catalog.OpenSQLite(cfg.Database, logger)
			case "postgres":
				inspector, err = catalog.OpenPostgres(cmd.Context(), cfg.Database, logger)
			default:
				return fmt.Errorf("schema inspection does not support the %s dialect", cfg.Dialect)
			}
			if err != nil {
				return err
			}
			defer func() { _ = inspector.Close() }()

			columns, err := inspector.TableColumns(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Column", "Type", "Nullable"})
			for _, col := range columns {
				t.AppendRow(table.Row{col.Name, col.Type, col.Nullable})
			}
			t.Render()
			return nil
		},
	}
}
