package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ideas-net-studio/shared-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a memory",
		Long:  "Update a memory. Only the supplied flags change; everything else is untouched.",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().String("content", "", "New content")
	cmd.Flags().String("tags", "", "Replacement comma-separated tags")
	cmd.Flags().String("related", "", "Replacement comma-separated related ids")
	cmd.Flags().IntP("importance", "i", 0, "New importance 1-10")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	var p store.UpdateParams

	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		p.Title = &v
	}
	if cmd.Flags().Changed("content") {
		v, _ := cmd.Flags().GetString("content")
		p.Content = &v
	}
	if cmd.Flags().Changed("tags") {
		v, _ := cmd.Flags().GetString("tags")
		tags := splitCSV(v)
		p.Tags = &tags
	}
	if cmd.Flags().Changed("related") {
		v, _ := cmd.Flags().GetString("related")
		related := splitCSV(v)
		p.Related = &related
	}
	if cmd.Flags().Changed("importance") {
		v, _ := cmd.Flags().GetInt("importance")
		p.Importance = &v
	}

	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.Update(cmd.Context(), args[0], p)
	if err != nil {
		exitErr("update", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}
