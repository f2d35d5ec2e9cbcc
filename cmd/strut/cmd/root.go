package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/strut/pkg/store"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbPath     string
	verbose    bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "strut",
	Short: "Grid snapping and auto-rotation for strut-and-connector frames",
	Long: `Build frames of supports and connectors on an integer grid. Parts snap
to the open ends of what is already placed, and connectors are turned so
their arms face the supports they join.

Examples:
  strut catalog                                      # List part types
  strut eval examples/frame.strut --save table       # Run a script and store it
  strut snap table --type connector-6 --at 0,3,0     # Best snap near a cell
  strut bom table                                    # Bill of materials`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	def := os.Getenv("STRUT_DB")
	if def == "" {
		def = store.DefaultPath
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", def, "project database path (env STRUT_DB)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

func openStore() (*store.Store, error) {
	log.Printf("opening project database %s", dbPath)
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open project database: %w", err)
	}
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
