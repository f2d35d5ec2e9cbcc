package cmd

import (
	"context"
	"fmt"
	"log"
	"text/tabwriter"

	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
	"github.com/chazu/strut/pkg/snap"
	"github.com/spf13/cobra"
)

var (
	snapType   string
	snapAt     string
	snapRadius int
	snapAll    bool
	snapPlace  bool
)

var snapCmd = &cobra.Command{
	Use:   "snap <project>",
	Short: "Find snap points for a part near a cell",
	Long: `Search a stored project for places a part can snap to near a cell.
Candidates are ordered nearest first; connectors are auto-rotated to face
the support ends around them.

Examples:
  strut snap table --type connector-6 --at 0,3,0
  strut snap table --type support-2 --at 4,3,0 --radius 2 --all
  strut snap table --type connector-3-corner --at 0,3,0 --place`,
	Args: cobra.ExactArgs(1),
	RunE: runSnap,
}

func init() {
	rootCmd.AddCommand(snapCmd)

	snapCmd.Flags().StringVarP(&snapType, "type", "t", "", "part type to snap")
	snapCmd.Flags().StringVar(&snapAt, "at", "0,0,0", "cursor cell as x,y,z")
	snapCmd.Flags().IntVarP(&snapRadius, "radius", "r", snap.DefaultRadius, "search radius in cells")
	snapCmd.Flags().BoolVar(&snapAll, "all", false, "list every candidate, not just the best")
	snapCmd.Flags().BoolVar(&snapPlace, "place", false, "place the best candidate and save the project")

	snapCmd.MarkFlagRequired("type")
}

func runSnap(cmd *cobra.Command, args []string) error {
	origin, err := grid.ParseCell(snapAt)
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	a, err := s.Load(ctx, args[0], catalog.Builtin())
	if err != nil {
		return err
	}

	cands, err := snap.FindSnapPoints(a, catalog.TypeID(snapType), origin, snapRadius)
	if err != nil {
		return err
	}
	log.Printf("%d candidates for %s within %d of %s", len(cands), snapType, snapRadius, origin)
	if len(cands) == 0 {
		return fmt.Errorf("no snap point for %s within %d of %s", snapType, snapRadius, origin)
	}

	if snapPlace {
		id, err := cands[0].Place(a)
		if err != nil {
			return fmt.Errorf("failed to place: %w", err)
		}
		if err := s.Save(ctx, args[0], a); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		log.Printf("placed %s as %s", snapType, id)
	}

	if !snapAll {
		cands = cands[:1]
	}
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), cands)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CELL\tROTATION\tFACING\tCOVERAGE\tDISTANCE")
	for _, c := range cands {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%.2f\n",
			c.Cell, c.Rotation, c.Orientation, c.Coverage, max(len(c.Needed), 1), c.Distance())
	}
	return w.Flush()
}
