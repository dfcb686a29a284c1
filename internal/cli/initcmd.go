package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ideas-net-studio/shared-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Build a fresh memory store",
		Long:  "Initialize a memory store at the given directory. Refuses a non-empty directory unless --overwrite is set.",
		Args:  cobra.ExactArgs(1),
		Run:   runInit,
	}

	cmd.Flags().Bool("overwrite", false, "Clear prior contents before initializing")

	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	dir, err := filepath.Abs(args[0])
	if err != nil {
		exitErr("init", err)
	}

	if err := store.Build(dir, overwrite); err != nil {
		exitErr("init", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"root":%q}`+"\n", dir)
}
