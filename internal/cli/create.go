package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ideas-net-studio/shared-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "create [content]",
		Short: "Create a memory",
		Long:  "Create a memory. Content can be a positional arg or piped via stdin.",
		Run:   runCreate,
	}

	cmd.Flags().StringP("title", "t", "", "Title (required)")
	cmd.Flags().String("type", "", "Type: concept, decision, pattern, learning, reference (required)")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().String("related", "", "Comma-separated ids of related memories")
	cmd.Flags().IntP("importance", "i", 0, "Importance 1-10 (default 5)")

	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("type")

	RootCmd.AddCommand(cmd)
}

func runCreate(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	memType, _ := cmd.Flags().GetString("type")
	tagsStr, _ := cmd.Flags().GetString("tags")
	relatedStr, _ := cmd.Flags().GetString("related")

	var importance *int
	if cmd.Flags().Changed("importance") {
		v, _ := cmd.Flags().GetInt("importance")
		importance = &v
	}

	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	if strings.TrimSpace(content) == "" {
		exitErr("create", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.Create(cmd.Context(), store.CreateParams{
		Title:      title,
		Type:       memType,
		Content:    strings.TrimSpace(content),
		Tags:       splitCSV(tagsStr),
		Related:    splitCSV(relatedStr),
		Importance: importance,
	})
	if err != nil {
		exitErr("create", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}
