package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive browser",
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(context.Background(), a.repo, a.mirror, a.usage)
}
