package cmd

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vaphq/vap/internal/forms"
	"github.com/vaphq/vap/internal/state"
	"github.com/vaphq/vap/internal/vap"
)

var developersCmd = &cobra.Command{
	Use:     "developers",
	Aliases: []string{"devs"},
	Short:   "Manage developer profiles",
}

var developersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List developers",
	Args:  cobra.NoArgs,
	RunE:  withApplication(listDevelopers),
}

var developersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a developer with a profile document",
	Args:  cobra.NoArgs,
	RunE:  withApplication(addDeveloper),
}

var developersDownloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Download a developer's profile document",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(downloadProfile),
}

var developersEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Rename a developer or replace its profile document",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(editDeveloper),
}

func init() {
	rootCmd.AddCommand(developersCmd)
	developersCmd.AddCommand(developersListCmd, developersAddCmd, developersEditCmd, developersDownloadCmd)

	developersAddCmd.Flags().String("name", "", "developer name")
	developersAddCmd.Flags().String("file", "", "profile document (.pdf, .doc, .docx or .txt)")
	developersAddCmd.MarkFlagRequired("name")
	developersAddCmd.MarkFlagRequired("file")

	developersEditCmd.Flags().String("name", "", "new developer name (default: keep)")
	developersEditCmd.Flags().String("file", "", "replacement profile document (default: keep)")

	developersDownloadCmd.Flags().StringP("out", "o", "", "output file (default: the stored file name)")
}

func fetchDevelopers(a *application) ([]vap.Developer, error) {
	if err := a.run("fetch developers", a.store.FetchDevelopers); err != nil {
		return nil, sliceError(a.store.Snapshot().Developers.Error, err)
	}
	return a.store.Snapshot().Developers.Items, nil
}

func listDevelopers(cmd *cobra.Command, _ []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	developers, err := fetchDevelopers(a)
	if err != nil {
		return err
	}

	a.logger.Debug("fetched developers", zap.Int("count", len(developers)))
	return printDevelopers(cmd.OutOrStdout(), developers)
}

func addDeveloper(cmd *cobra.Command, _ []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	file, _ := cmd.Flags().GetString("file")

	form := forms.Developer{Name: name, File: file, Adding: true}
	if err := form.Validate(); err != nil {
		return errors.New(forms.Describe(err))
	}

	doc, err := vap.LoadUpload(a.fs, form.File)
	if err != nil {
		return err
	}

	a.store.Dispatch(state.AddDeveloperOpened{})

	var added *vap.Developer
	if err := a.run("add developer", func(ctx context.Context) error {
		added, err = a.store.AddDeveloper(ctx, form.Name, doc)
		return err
	}); err != nil {
		return sliceError(a.store.Snapshot().Developers.Error, err)
	}

	a.logger.Info("developer added", zap.String("developer_id", added.ID), zap.String("document", doc.FileName))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %s)\n", added.Name, added.ID)
	return err
}

func editDeveloper(cmd *cobra.Command, args []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	developers, err := fetchDevelopers(a)
	if err != nil {
		return err
	}

	current := vap.FindDeveloper(developers, args[0])
	if current == nil {
		return fmt.Errorf("developer %q not found", args[0])
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = current.Name
	}
	file, _ := cmd.Flags().GetString("file")

	form := forms.Developer{Name: name, File: file}
	if err := form.Validate(); err != nil {
		return errors.New(forms.Describe(err))
	}

	var doc *vap.Upload
	if form.File != "" {
		if doc, err = vap.LoadUpload(a.fs, form.File); err != nil {
			return err
		}
	}

	a.store.Dispatch(state.EditDeveloperOpened{Developer: *current})

	var updated *vap.Developer
	if err := a.run("update developer", func(ctx context.Context) error {
		updated, err = a.store.UpdateDeveloper(ctx, current.ID, form.Name, doc)
		return err
	}); err != nil {
		return sliceError(a.store.Snapshot().Developers.Error, err)
	}

	a.logger.Info("developer updated", zap.String("developer_id", updated.ID), zap.Bool("document_replaced", doc != nil))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (id %s)\n", updated.Name, updated.ID)
	return err
}

func downloadProfile(cmd *cobra.Command, args []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	developers, err := fetchDevelopers(a)
	if err != nil {
		return err
	}

	developer := vap.FindDeveloper(developers, args[0])
	if developer == nil {
		return fmt.Errorf("developer %q not found", args[0])
	}
	if developer.Link == "" {
		return fmt.Errorf("developer %s has no stored document", developer.ID)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = outputName(path.Base(developer.Link), developer.ID)
	}

	return download(cmd, a, developer.Link, vap.FormatOriginal, out)
}

// sliceError prefers the message a state slice recorded over the raw request error.
func sliceError(message string, err error) error {
	if message != "" {
		return errors.New(message)
	}
	return err
}
