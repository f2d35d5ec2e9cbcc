package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/chazu/strut/pkg/catalog"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the built-in part types",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	var recs []catalog.Record
	for _, def := range catalog.Builtin().List() {
		recs = append(recs, catalog.ToRecord(def))
	}
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), recs)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tKIND\tNAME\tSHAPE")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.Name, shape(r))
	}
	return w.Flush()
}

// shape summarises a record's geometry for the catalog listing.
func shape(r catalog.Record) string {
	if r.Kind == catalog.KindSupport {
		s := fmt.Sprintf("%d along %s", r.Length, r.Axis)
		if r.FreeAxis {
			s += " (free)"
		}
		return s
	}
	arms := make([]string, len(r.Arms))
	for i, d := range r.Arms {
		arms[i] = d.String()
	}
	return "arms " + strings.Join(arms, " ")
}
