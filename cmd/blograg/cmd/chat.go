package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"blograg/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		a.Start(cmd.Context())

		header := "No blogs indexed yet. Run: blograg seed"
		if gen := a.Indexer.Current(); gen != nil {
			header = fmt.Sprintf("%d blogs, %d chunks indexed with %s", gen.Documents, gen.Chunks, a.Embedder.Name())
		}
		m := tui.New(a.RAG, header, a.Config.Server.RequestTimeout())
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
