package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelang/pipelang/pkg/dialect"
	_ "github.com/pipelang/pipelang/pkg/dialects/postgres"
	_ "github.com/pipelang/pipelang/pkg/dialects/sqlite"
	_ "github.com/pipelang/pipelang/pkg/dialects/sqlserver"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Dialect", "Quoting", "Placeholders", "Paging"})
			for _, name := range dialect.List() {
				d, _ := dialect.Get(name)
				t.AppendRow(table.Row{
					d.Name,
					d.Identifiers.Quote + "x" + d.Identifiers.QuoteEnd,
					placeholderName(d.Placeholder),
					pagingName(d.Paging),
				})
			}
			t.Render()
			return nil
		},
	}
}

func placeholderName(s dialect.PlaceholderStyle) string {
	switch s {
	case dialect.PlaceholderDollar:
		return "$1, $2, ..."
	case dialect.PlaceholderAtName:
		return "@name"
	default:
		return "?"
	}
}

func pagingName(s dialect.PagingStyle) string {
	if s == dialect.PagingOffsetFetch {
		return "OFFSET ... FETCH"
	}
	return "LIMIT ... OFFSET"
}
