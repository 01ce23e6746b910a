package filtering

import (
	"strings"

	"github.com/vaphq/vap/internal/vap"
)

type searchFilter struct {
	query string
}

// NewSearch creates a filter matching query case-insensitively against the title,
// the developer name and the skills text.
func NewSearch(query string) Filter {
	return &searchFilter{query: strings.ToLower(query)}
}

func (f *searchFilter) Name() string { return "search" }

func (f *searchFilter) IsEnabled() bool { return f.query != "" }

func (f *searchFilter) Keep(r *vap.Resume) bool {
	if strings.Contains(strings.ToLower(r.Title), f.query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Developer.Name), f.query) {
		return true
	}
	if skills, ok := r.SkillsText(); ok && strings.Contains(strings.ToLower(skills), f.query) {
		return true
	}
	return false
}

func (f *searchFilter) Status() Status {
	details := map[string]string{}
	if f.query != "" {
		details["query"] = f.query
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}

type developerFilter struct {
	id string
}

// NewDeveloper creates a filter keeping only resumes generated for the developer id.
func NewDeveloper(id string) Filter {
	return &developerFilter{id: id}
}

func (f *developerFilter) Name() string { return "developer" }

func (f *developerFilter) IsEnabled() bool { return f.id != "" }

func (f *developerFilter) Keep(r *vap.Resume) bool {
	return r.OwnerID() == f.id
}

func (f *developerFilter) Status() Status {
	details := map[string]string{}
	if f.id != "" {
		details["developer_id"] = f.id
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}
