package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askSmart bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the stored blogs",
	Long: `Answer a question using the passages most similar to it.

Examples:
  # Grounded answer
  blograg ask "How long does pho broth simmer?"

  # Matching blogs plus a short explanation
  blograg ask --smart "Vietnamese food"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSmart, "smart", false, "List matching blogs instead of a single answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	a, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	a.Start(cmd.Context())

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	if !askSmart {
		answer, err := a.RAG.Answer(cmd.Context(), query)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", boldGreen("Answer:"), answer)
		return nil
	}

	res, err := a.RAG.SmartSearch(cmd.Context(), query)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", boldGreen("Answer:"), res.Answer)
	for i, src := range res.Sources {
		fmt.Printf("\n%s %s [%s] %s\n  %s\n", boldCyan(fmt.Sprintf("%d.", i+1)), src.Title, src.Category, src.DocumentID, src.Snippet)
	}
	return nil
}
