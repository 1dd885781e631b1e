package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "List built semantic indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}

		names, err := a.Indexes.ListIndexNames(cmd.Context())
		if err != nil {
			return fmt.Errorf("list indexes: %w", err)
		}
		if len(names) == 0 {
			cmd.Println("No indexes built yet.")
			return nil
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
