package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blograg/internal/domain"
	"blograg/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all blogs and users with the sample data",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := seed.Run(cmd.Context(), a.Store)
		if err != nil {
			return err
		}
		gen, err := a.Indexer.Refresh(cmd.Context())
		if err != nil && !errors.Is(err, domain.ErrNoData) {
			return err
		}
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Printf("%s %d users, %d blogs\n", green("seeded"), res.Users, res.Blogs)
		if gen != nil {
			fmt.Printf("index: %d chunks\n", gen.Chunks)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
