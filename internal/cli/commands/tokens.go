package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pipelang/pipelang/pkg/parser"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Show the token stream for a pipeline",
		Long:  `Lex pipeline source and print each token with its position.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args, expr)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Type", "Literal", "Line", "Column"})
			for _, tok := range parser.Tokenize(source) {
				t.AppendRow(table.Row{tok.Type.String(), tok.Literal, tok.Pos.Line, tok.Pos.Column})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "Lex an inline expression instead of a file")
	return cmd
}
