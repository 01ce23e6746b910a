package filtering

import (
	"go.uber.org/zap"

	"github.com/vaphq/vap/internal/vap"
)

// Spec holds the resume list filter criteria. Empty fields do not filter.
type Spec struct {
	Search      string   `json:"search"`
	DeveloperID string   `json:"developerId"`
	Skills      []string `json:"skills"`
}

// IsEmpty reports whether no filter is set, so every resume is kept.
func (s Spec) IsEmpty() bool {
	return s.Search == "" && s.DeveloperID == "" && len(s.Skills) == 0
}

// Filter represents a single predicate of the resume filter chain.
type Filter interface {
	Name() string
	IsEnabled() bool
	Keep(r *vap.Resume) bool
}

// Step describes the result of executing a filtering step.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Steps returns the filter chain. All steps must pass for a resume to be kept.
func Steps(spec Spec) []Filter {
	return []Filter{
		NewSearch(spec.Search),
		NewDeveloper(spec.DeveloperID),
		NewSkills(spec.Skills),
	}
}

// Apply returns the resumes passing every filter in their original order. The input is not modified.
func Apply(resumes []vap.Resume, spec Spec) []vap.Resume {
	out, _ := Run(Steps(spec), resumes, nil)
	return out
}

// Run executes the supplied filters sequentially and reports what each step dropped.
func Run(steps []Filter, resumes []vap.Resume, logger *zap.Logger) ([]vap.Resume, []Step) {
	current := make([]vap.Resume, len(resumes))
	copy(current, resumes)

	report := make([]Step, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}

		initial := len(current)
		kept := current[:0]
		for i := range current {
			if step.Keep(&current[i]) {
				kept = append(kept, current[i])
			}
		}
		current = kept

		report = append(report, Step{Name: step.Name(), Initial: initial, Dropped: initial - len(current), Left: len(current)})
	}

	LogSteps(logger, report)
	return current, report
}

// LogSteps writes one debug entry per step of a report returned by Run. A nil logger is ignored.
func LogSteps(logger *zap.Logger, report []Step) {
	if logger == nil {
		return
	}

	for _, info := range report {
		logger.Debug("filter step",
			zap.String("name", info.Name),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
