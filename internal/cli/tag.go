package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tag [id] [tags...]",
		Short: "Add or remove tags on a memory",
		Args:  cobra.MinimumNArgs(2),
		Run:   runTag,
	}

	cmd.Flags().Bool("remove", false, "Remove the tags instead of adding them")

	RootCmd.AddCommand(cmd)
}

func runTag(cmd *cobra.Command, args []string) {
	remove, _ := cmd.Flags().GetBool("remove")
	id, tags := args[0], args[1:]

	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	op := s.AddTags
	if remove {
		op = s.RemoveTags
	}
	mem, err := op(cmd.Context(), id, tags)
	if err != nil {
		exitErr("tag", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}
