package commands

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite" // register the sqlite driver

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx driver

	"github.com/pipelang/pipelang/internal/cli/config"
	"github.com/pipelang/pipelang/pkg/compiler"
	"github.com/pipelang/pipelang/pkg/dialect"
	"github.com/pipelang/pipelang/pkg/render"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var (
		expr       string
		paramFlags []string
	)

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Compile a pipeline and execute it against a database",
		Long: `Compile pipeline source and execute the resulting SQL against the
configured database: a SQLite path (or :memory:) for the sqlite dialect,
a connection string for postgres.

Named parameters are supplied with repeated --param name=value flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetCurrentConfig()
			logger := config.GetLogger(cmd.Context())

			source, err := readSource(cmd, args, expr)
			if err != nil {
				return err
			}

			stmt, err := compiler.CompileToStatement(source)
			if err != nil {
				return err
			}

			d, ok := dialect.Get(cfg.Dialect)
			if !ok {
				return fmt.Errorf("%w: %s", dialect.ErrUnknownDialect, cfg.Dialect)
			}
			sqlText, err := render.Render(stmt, d)
			if err != nil {
				return err
			}
			logger.Debug("executing query", slog.String("sql", sqlText))

			params, err := parseParamFlags(paramFlags)
			if err != nil {
				return err
			}
			queryArgs := make([]any, 0, len(stmt.Params))
			for _, p := range stmt.Params {
				v, ok := params[p.Name]
				if !ok {
					return fmt.Errorf("missing parameter @%s, pass --param %s=value", p.Name, p.Name)
				}
				queryArgs = append(queryArgs, v)
			}

			db, err := openDatabase(cfg.Dialect, cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			rows, err := db.QueryContext(cmd.Context(), sqlText, queryArgs...)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			defer func() { _ = rows.Close() }()

			return renderResults(cmd.OutOrStdout(), rows, cfg.OutputFormat)
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "Run an inline expression instead of a file")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "Query parameter as name=value (repeatable)")
	return cmd
}

// openDatabase opens a connection for a dialect that can be executed
// locally. SQL Server compilation is supported; execution is not.
func openDatabase(dialectName, database string) (*sql.DB, error) {
	switch dialectName {
	case "sqlite":
		return sql.Open("sqlite", database)
	case "postgres":
		return sql.Open("pgx", database)
	default:
		return nil, fmt.Errorf("run does not support the %s dialect, use compile", dialectName)
	}
}
