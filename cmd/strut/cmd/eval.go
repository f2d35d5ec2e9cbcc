package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/engine"
	"github.com/spf13/cobra"
)

var saveAs string

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Short: "Evaluate a frame script",
	Long: `Evaluate a script against the built-in catalog and print the resulting
bill of materials. Use - to read the script from stdin.

Examples:
  strut eval examples/frame.strut
  strut eval examples/frame.strut --save table`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&saveAs, "save", "", "store the assembly as a named project")
}

func runEval(cmd *cobra.Command, args []string) error {
	source, err := readScript(cmd, args[0])
	if err != nil {
		return err
	}

	res, evalErrs, err := engine.NewEngine(nil).Evaluate(source)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("%s: %s", args[0], strings.Join(msgs, "; "))
	}
	log.Printf("evaluated %s: %d parts, %d types defined", args[0], res.Assembly.Len(), len(res.Defined))

	if saveAs != "" {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Save(context.Background(), saveAs, res.Assembly); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		log.Printf("saved project %q", saveAs)
	}

	return printBOM(cmd.OutOrStdout(), res.Assembly)
}

func readScript(cmd *cobra.Command, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(b), nil
}

// printBOM writes the bill of materials, as a table or as JSON.
func printBOM(w io.Writer, a *assembly.Assembly) error {
	bom := a.BillOfMaterials()
	if outputJSON {
		return writeJSON(w, bom)
	}
	total := 0
	for _, line := range bom {
		fmt.Fprintf(w, "%4d  %-24s %s\n", line.Count, line.Type, line.Name)
		total += line.Count
	}
	fmt.Fprintf(w, "%4d  parts\n", total)
	return nil
}
