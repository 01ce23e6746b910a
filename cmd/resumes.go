package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vaphq/vap/internal/filtering"
	"github.com/vaphq/vap/internal/forms"
	"github.com/vaphq/vap/internal/state"
	"github.com/vaphq/vap/internal/tasks"
	"github.com/vaphq/vap/internal/vap"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "Generate and browse tailored resumes",
}

var resumesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated resumes, optionally filtered",
	Args:  cobra.NoArgs,
	RunE:  withApplication(listResumes),
}

var resumesSkillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the skills found across generated resumes",
	Args:  cobra.NoArgs,
	RunE:  withApplication(listSkills),
}

var resumesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a resume tailored to a job description",
	Args:  cobra.NoArgs,
	RunE:  withApplication(generateResume),
}

var resumesConvertCmd = &cobra.Command{
	Use:   "convert ID",
	Short: "Request a PDF rendition of a resume",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(convertResume),
}

var resumesDownloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Download a resume as DOCX or PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  withApplication(downloadResume),
}

func init() {
	rootCmd.AddCommand(resumesCmd)
	resumesCmd.AddCommand(resumesListCmd, resumesSkillsCmd, resumesGenerateCmd, resumesConvertCmd, resumesDownloadCmd)

	resumesListCmd.Flags().StringP("search", "s", "", "match title, developer name or skills")
	resumesListCmd.Flags().String("developer", "", "only resumes of this developer id")
	resumesListCmd.Flags().StringSlice("skill", nil, "only resumes mentioning any of these skills")

	resumesGenerateCmd.Flags().String("job", "", "job description text")
	resumesGenerateCmd.Flags().String("job-file", "", "file containing the job description")
	resumesGenerateCmd.Flags().String("developer", "", "developer id (default: choose interactively)")
	resumesGenerateCmd.Flags().String("doc-type", vap.DocTypeDOCX, "document type: docx or pdf")
	resumesGenerateCmd.MarkFlagsMutuallyExclusive("job", "job-file")
	resumesGenerateCmd.MarkFlagsOneRequired("job", "job-file")

	resumesDownloadCmd.Flags().String("format", vap.FormatDOCX, "docx or pdf")
	resumesDownloadCmd.Flags().StringP("out", "o", "", "output file (default: <title>.<format>)")
}

func fetchResumes(a *application) error {
	if err := a.run("fetch resumes", a.store.FetchResumes); err != nil {
		return sliceError(a.store.Snapshot().Resumes.Error, err)
	}
	return nil
}

func listResumes(cmd *cobra.Command, _ []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	developer, _ := cmd.Flags().GetString("developer")
	skills, _ := cmd.Flags().GetStringSlice("skill")

	a.store.Dispatch(state.SearchChanged{Query: search})
	a.store.Dispatch(state.DeveloperFilterChanged{DeveloperID: developer})
	a.store.Dispatch(state.SkillsFilterChanged{Skills: skills})

	if developer == "" {
		if err := fetchResumes(a); err != nil {
			return err
		}
	} else if err := fetchForDeveloper(a, developer); err != nil {
		return err
	}

	resumes := a.store.Snapshot().Resumes
	for _, status := range filtering.Describe(filtering.Steps(resumes.Filters)) {
		a.logger.Debug("filter status", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled), zap.Any("details", status.Details))
	}

	return printResumes(cmd.OutOrStdout(), resumes.Filtered, len(resumes.Items))
}

// fetchForDeveloper loads developers and resumes together and checks that developerID exists.
// Either failure aborts the other request.
func fetchForDeveloper(a *application, developerID string) error {
	err := a.run("fetch developers and resumes", func(ctx context.Context) error {
		return tasks.Group(ctx, a.store.FetchDevelopers, a.store.FetchResumes)
	})

	snapshot := a.store.Snapshot()
	if err != nil {
		message := snapshot.Developers.Error
		if message == "" {
			message = snapshot.Resumes.Error
		}
		return sliceError(message, err)
	}

	if vap.FindDeveloper(snapshot.Developers.Items, developerID) == nil {
		return fmt.Errorf("developer %q not found", developerID)
	}
	return nil
}

func listSkills(cmd *cobra.Command, _ []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	if err := fetchResumes(a); err != nil {
		return err
	}

	for _, skill := range filtering.AvailableSkills(a.store.Snapshot().Resumes.Items) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), skill); err != nil {
			return err
		}
	}
	return nil
}

func generateResume(cmd *cobra.Command, _ []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	job, _ := cmd.Flags().GetString("job")
	if jobFile, _ := cmd.Flags().GetString("job-file"); jobFile != "" {
		data, err := afero.ReadFile(a.fs, jobFile)
		if err != nil {
			return fmt.Errorf("reading job description: %w", err)
		}
		job = string(data)
	}

	developerID, _ := cmd.Flags().GetString("developer")
	if developerID == "" {
		developers, err := fetchDevelopers(a)
		if err != nil {
			return err
		}
		if developerID, err = selectDeveloper(developers); err != nil {
			return err
		}
	}

	docType, _ := cmd.Flags().GetString("doc-type")

	form := forms.Generate{JobDescription: job, DeveloperID: developerID, DocType: strings.ToLower(docType)}
	if err := form.Validate(); err != nil {
		return errors.New(forms.Describe(err))
	}

	a.logger.Info("generating resume", zap.String("developer_id", form.DeveloperID), zap.String("doc_type", form.DocType))

	var generated *vap.Resume
	err := a.run("generate resume", func(ctx context.Context) error {
		var err error
		generated, err = a.store.GenerateResume(ctx, vap.GenerateRequest{
			JobDescription: form.JobDescription,
			DeveloperID:    form.DeveloperID,
			DocType:        form.DocType,
		})
		return err
	})
	if err != nil {
		return sliceError(a.store.Snapshot().Resumes.Error, err)
	}

	url, err := a.client.DocumentURL(generated.ResumeURL, form.DocType)
	if err != nil {
		return err
	}

	if generated.ID != "" {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Generated resume %s: %s\n", generated.ID, url)
	} else {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Generated resume: %s\n", url)
	}
	return err
}

func convertResume(cmd *cobra.Command, args []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	var pdfURL string
	err := a.run("convert resume", func(ctx context.Context) error {
		var err error
		pdfURL, err = a.store.ConvertToPDF(ctx, args[0])
		return err
	})
	if err != nil {
		return sliceError(a.store.Snapshot().Resumes.Error, err)
	}

	url, err := a.client.DocumentURL(pdfURL, vap.FormatOriginal)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "PDF ready: %s\n", url)
	return err
}

func downloadResume(cmd *cobra.Command, args []string, a *application) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	if err := fetchResumes(a); err != nil {
		return err
	}

	resume := vap.FindResume(a.store.Snapshot().Resumes.Items, args[0])
	if resume == nil {
		return fmt.Errorf("resume %q not found", args[0])
	}

	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)

	var path string
	switch format {
	case vap.FormatDOCX:
		path = resume.ResumeURL
	case vap.FormatPDF:
		if resume.PDFURL == "" {
			return fmt.Errorf("resume %s has no PDF yet, run 'vap resumes convert %s' first", resume.ID, resume.ID)
		}
		path = resume.PDFURL
	default:
		return fmt.Errorf("unsupported format %q, use docx or pdf", format)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = outputName(resume.Title, resume.ID) + "." + format
	}

	return download(cmd, a, path, format, out)
}

// download fetches the document at path and writes it to out.
func download(cmd *cobra.Command, a *application, path, format, out string) error {
	var buf bytes.Buffer
	err := a.run("download "+out, func(ctx context.Context) error {
		_, err := a.client.Download(ctx, path, format, &buf)
		return err
	})
	if err != nil {
		return errors.New(vap.Message(err, "Failed to download document"))
	}

	if format == vap.FormatPDF || strings.HasSuffix(strings.ToLower(out), ".pdf") {
		pages, err := vap.PDFPages(buf.Bytes())
		if err != nil {
			return fmt.Errorf("downloaded PDF is unreadable: %w", err)
		}
		a.logger.Debug("pdf checked", zap.Int("pages", pages))
	}

	if err := afero.WriteFile(a.fs, out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	a.logger.Info("document saved", zap.String("file", out), zap.Int("bytes", buf.Len()))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
	return err
}

// outputName turns a title into a file name, falling back to fallback when nothing usable is left.
func outputName(title, fallback string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '_'
		case r < 0x20:
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(title))

	if name == "" {
		return fallback
	}
	return name
}
