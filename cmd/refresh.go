package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload developers and resumes and print a summary",
	Args:  cobra.NoArgs,
	RunE:  withApplication(refresh),
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func refresh(cmd *cobra.Command, _ []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	err := a.run("refresh", a.store.Refresh)

	snapshot := a.store.Snapshot()
	a.logger.Info("refreshed",
		zap.Int("developers", len(snapshot.Developers.Items)),
		zap.Int("resumes", len(snapshot.Resumes.Items)),
	)

	out := cmd.OutOrStdout()
	if snapshot.Developers.Error != "" {
		fmt.Fprintf(out, "developers: %s\n", snapshot.Developers.Error)
	} else {
		fmt.Fprintf(out, "developers: %d\n", len(snapshot.Developers.Items))
	}
	if snapshot.Resumes.Error != "" {
		fmt.Fprintf(out, "resumes: %s\n", snapshot.Resumes.Error)
	} else {
		fmt.Fprintf(out, "resumes: %d\n", len(snapshot.Resumes.Items))
	}

	return err
}
