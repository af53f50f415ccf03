// Package commands implements the pipelang subcommands.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// readSource returns the pipeline source for a command: the --expr flag
// when set, otherwise the file named by the first argument, with "-"
// meaning stdin.
func readSource(cmd *cobra.Command, args []string, expr string) (string, error) {
	if expr != "" {
		return expr, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no input: pass a file, - for stdin, or --expr")
	}
	if args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

// parseParamFlags splits repeated name=value flags into a lookup map.
func parseParamFlags(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}
