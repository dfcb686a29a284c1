// Package cli implements the shared-memory CLI commands. It is the
// transport boundary: each command maps a name and flag set onto exactly
// one typed call into the store facade.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ideas-net-studio/shared-memory/internal/model"
	"github.com/ideas-net-studio/shared-memory/internal/store"
)

var (
	rootDir string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "shared-memory",
	Short: "Persistent structured memory for AI agents",
	Long:  "Store, tag, relate, and search small knowledge records. File-backed, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Store root directory (default: $MEMORY_DIR or ~/.shared-memory)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func getRootDir() string {
	if rootDir != "" {
		return rootDir
	}
	if env := os.Getenv("MEMORY_DIR"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shared-memory")
}

func openService() (*store.Service, error) {
	return store.Open(getRootDir())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// splitCSV parses a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseTypes validates a comma-separated type filter.
func parseTypes(s string) ([]model.Type, error) {
	var out []model.Type
	for _, raw := range splitCSV(s) {
		t, err := model.ParseType(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
