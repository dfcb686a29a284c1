package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the memory records",
		Long:  "Discard the search index and recompute it. Use after index corruption or a format change.",
		Run:   runReindex,
	}

	RootCmd.AddCommand(cmd)
}

func runReindex(cmd *cobra.Command, args []string) {
	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RebuildIndex(cmd.Context()); err != nil {
		exitErr("reindex", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true}`)
}
