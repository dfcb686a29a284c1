package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ideas-net-studio/shared-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Long:  "List memories, most recently updated first, with optional type and tag filters.",
		Run:   runList,
	}

	cmd.Flags().String("types", "", "Comma-separated type filter")
	cmd.Flags().String("tags", "", "Comma-separated tag filter")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	typesStr, _ := cmd.Flags().GetString("types")
	tagsStr, _ := cmd.Flags().GetString("tags")
	limit, _ := cmd.Flags().GetInt("limit")

	types, err := parseTypes(typesStr)
	if err != nil {
		exitErr("list", err)
	}

	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.List(store.ListParams{
		Types: types,
		Tags:  splitCSV(tagsStr),
		Limit: limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}
