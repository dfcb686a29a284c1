package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get a memory by id and type",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().String("type", "", "Memory type (required)")
	cmd.MarkFlagRequired("type")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	memType, _ := cmd.Flags().GetString("type")

	s, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.Get(args[0], memType)
	if err != nil {
		exitErr("get", err)
	}

	b, _ := json.MarshalIndent(mem, "", "  ")
	fmt.Println(string(b))
}
