package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

var (
	uploadContentType string
	uploadJSON        bool
	summarizeJSON     bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a PDF or text document",
	Long: `Extracts the text of a PDF or plain-text file, stores it and prints
the new document ID. The content type is taken from the file extension
unless --content-type is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [document-id]",
	Short: "Summarize a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override the detected content type")
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "output the result as JSON")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output the summary as JSON")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}

	contentType := uploadContentType
	if contentType == "" {
		contentType = detectContentType(path, data)
	}

	result, err := a.Documents.Upload(cmd.Context(), domain.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if uploadJSON {
		return printJSON(cmd, result)
	}
	cmd.Println(result.DocumentID)
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := a.Analysis.Summarize(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	if summarizeJSON {
		return printJSON(cmd, summary)
	}
	cmd.Println(summary.Summary)
	return nil
}

func detectContentType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
