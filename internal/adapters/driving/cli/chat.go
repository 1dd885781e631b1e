package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askDocument string
	askQuestion string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about a document",
	Long: `Answers a question from passages of one stored document and lists
the excerpts the answer was drawn from. The document's semantic index is
built on first use.`,
	Args: cobra.NoArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDocument, "document", "d", "", "document ID")
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(askDocument) == "" || strings.TrimSpace(askQuestion) == "" {
		return errors.New("--document and --question are required")
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}

	resp, err := a.Chat.Ask(cmd.Context(), askDocument, askQuestion)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, resp)
	}

	cmd.Println(resp.Answer)
	if len(resp.Sources) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range resp.Sources {
		cmd.Printf("  [%d] %s\n", i+1, excerpt(src.Content, 160))
	}
	return nil
}

// excerpt shortens s to at most n runes on one line.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
