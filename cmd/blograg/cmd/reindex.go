package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blograg/internal/domain"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the index from the store and report its size",
	Long: `Rebuild the index from every stored blog. The index lives in memory, so
this mostly checks that the configured embedder works end to end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		gen, err := a.Indexer.Refresh(cmd.Context())
		if errors.Is(err, domain.ErrNoData) {
			color.Yellow("store is empty, nothing to index (try: blograg seed)")
			return nil
		}
		if err != nil {
			return err
		}
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Printf("%s %d documents, %d chunks, embedder %s\n",
			green("indexed"), gen.Documents, gen.Chunks, a.Embedder.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
