package cmd

import (
	"context"

	"github.com/chazu/strut/pkg/catalog"
	"github.com/spf13/cobra"
)

var bomCmd = &cobra.Command{
	Use:   "bom <project>",
	Short: "Print the bill of materials of a stored project",
	Args:  cobra.ExactArgs(1),
	RunE:  runBOM,
}

func init() {
	rootCmd.AddCommand(bomCmd)
}

func runBOM(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	a, err := s.Load(context.Background(), args[0], catalog.Builtin())
	if err != nil {
		return err
	}
	return printBOM(cmd.OutOrStdout(), a)
}
