package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vaphq/vap/internal/filtering"
	"github.com/vaphq/vap/internal/utils"
	"github.com/vaphq/vap/internal/vap"
)

const maxCellLength = 48

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.String())
	return err
}

func printDevelopers(w io.Writer, developers []vap.Developer) error {
	if len(developers) == 0 {
		_, err := fmt.Fprintln(w, "No developers yet.")
		return err
	}

	rows := make([][]string, 0, len(developers))
	for _, d := range developers {
		rows = append(rows, []string{d.ID, d.Name, d.Link})
	}

	return renderTable(w, []string{"ID", "NAME", "DOCUMENT"}, rows)
}

func printResumes(w io.Writer, resumes []vap.Resume, total int) error {
	if len(resumes) == 0 {
		_, err := fmt.Fprintf(w, "No resumes match (%d total).\n", total)
		return err
	}

	rows := make([][]string, 0, len(resumes))
	for i := range resumes {
		r := &resumes[i]

		skills := "-"
		if text, ok := r.SkillsText(); ok {
			skills = strings.Join(filtering.ParseSkills(text), ", ")
		}

		pdf := "-"
		if r.PDFURL != "" {
			pdf = "yes"
		}

		rows = append(rows, []string{
			r.ID,
			utils.TruncateForLog(r.Title, maxCellLength),
			r.Developer.Name,
			utils.TruncateForLog(skills, maxCellLength),
			pdf,
			r.CreatedAt,
		})
	}

	if err := renderTable(w, []string{"ID", "TITLE", "DEVELOPER", "SKILLS", "PDF", "CREATED"}, rows); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d of %d resumes", len(resumes), total)))
	return err
}
