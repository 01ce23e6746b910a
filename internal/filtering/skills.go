package filtering

import (
	"slices"
	"strings"
	"unicode"

	"github.com/vaphq/vap/internal/vap"
)

type skillsFilter struct {
	skills []string
}

// NewSkills creates a filter keeping resumes whose skills text contains any of skills.
// Matching is a case-insensitive substring test on the raw text, not a comparison of
// the tokens ParseSkills produces.
func NewSkills(skills []string) Filter {
	lowered := make([]string, 0, len(skills))
	for _, skill := range skills {
		lowered = append(lowered, strings.ToLower(skill))
	}
	return &skillsFilter{skills: lowered}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) IsEnabled() bool { return len(f.skills) > 0 }

func (f *skillsFilter) Keep(r *vap.Resume) bool {
	text, ok := r.SkillsText()
	if !ok {
		return false
	}

	text = strings.ToLower(text)
	for _, skill := range f.skills {
		if strings.Contains(text, skill) {
			return true
		}
	}
	return false
}

func (f *skillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		details["skills"] = strings.Join(f.skills, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}

// ParseSkills splits a skills text on commas and whitespace for display.
func ParseSkills(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// AvailableSkills returns the sorted, de-duplicated skill tokens of resumes.
func AvailableSkills(resumes []vap.Resume) []string {
	seen := make(map[string]struct{})
	for i := range resumes {
		text, ok := resumes[i].SkillsText()
		if !ok {
			continue
		}
		for _, skill := range ParseSkills(text) {
			seen[skill] = struct{}{}
		}
	}

	skills := make([]string, 0, len(seen))
	for skill := range seen {
		skills = append(skills, skill)
	}
	slices.Sort(skills)

	return skills
}
