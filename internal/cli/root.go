// Package cli implements progressctl, the operator command line for
// progress blocks.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-progress-api/internal/service"
)

// App holds the services used by CLI commands.
type App struct {
	Progress service.ProgressService
}

// NewRootCmd creates the top-level "progressctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "progressctl",
		Short:         "Inspect and maintain course progress blocks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBlocksCmd(app),
		newSummaryCmd(app),
		newOverviewCmd(app),
		newRemapCmd(app),
	)

	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// parseMapping reads "quiz12=40" pairs into an instance mapping.
func parseMapping(pairs []string) (map[string]uint, error) {
	mapping := make(map[string]uint, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid mapping %q, expected <type><id>=<new id>", pair)
		}
		id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid instance id in mapping %q", pair)
		}
		mapping[key] = uint(id)
	}
	return mapping, nil
}
