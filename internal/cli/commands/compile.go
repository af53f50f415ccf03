package commands

import (
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelang/pipelang/internal/cli/config"
	"github.com/pipelang/pipelang/pkg/compiler"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var (
		expr       string
		showParams bool
	)

	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile a pipeline to SQL",
		Long: `Compile pipeline source to SQL text for the configured dialect.

Reads from a file, from stdin with -, or from --expr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetCurrentConfig()
			logger := config.GetLogger(cmd.Context())

			source, err := readSource(cmd, args, expr)
			if err != nil {
				return err
			}

			logger.Debug("compiling pipeline", slog.String("dialect", cfg.Dialect))

			sql, err := compiler.Compile(source, cfg.Dialect)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), sql)

			if showParams {
				stmt, err := compiler.CompileToStatement(source)
				if err != nil {
					return err
				}
				if len(stmt.Params) > 0 {
					t := table.NewWriter()
					t.SetOutputMirror(cmd.OutOrStdout())
					t.SetStyle(table.StyleLight)
					t.AppendHeader(table.Row{"Parameter", "Type"})
					for _, p := range stmt.Params {
						t.AppendRow(table.Row{"@" + p.Name, p.SQLType})
					}
					t.Render()
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "Compile an inline expression instead of a file")
	cmd.Flags().BoolVar(&showParams, "params", false, "Show harvested parameters after the SQL")
	return cmd
}
