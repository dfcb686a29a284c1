package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ideas-net-studio/shared-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories by keyword",
		Long:  "Search memory titles, content, and tags; best token match first.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("types", "", "Comma-separated type filter")
	cmd.Flags().String("tags", "", "Comma-separated tag filter")
	cmd.Flags().IntP("limit", "l", store.DefaultSearchLimit, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	typesStr, _ := cmd.Flags().GetString("types")
	tagsStr, _ := cmd.Flags().GetString("tags")
	limit, _ := cmd.Flags().GetInt("limit")

	types, err := parseTypes(typesStr)
	if err != nil {
		exitErr("search", err)
	}

	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query: strings.Join(args, " "),
		Types: types,
		Tags:  splitCSV(tagsStr),
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
