package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "relate [source-id] [target-ids...]",
		Short: "Relate or unrelate memories",
		Long:  "Add symmetric relations from source to each target. Both sides are updated.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runRelate,
	}

	cmd.Flags().Bool("remove", false, "Remove the relations instead of adding them")

	RootCmd.AddCommand(cmd)
}

func runRelate(cmd *cobra.Command, args []string) {
	remove, _ := cmd.Flags().GetBool("remove")
	source, targets := args[0], args[1:]

	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	op := s.Relate
	if remove {
		op = s.Unrelate
	}
	mem, err := op(source, targets)
	if err != nil {
		exitErr("relate", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}
