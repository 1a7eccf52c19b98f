package sim

import "sort"

// ValidDisciplines is the set of recognized queue discipline names.
// Shared by NewJobDiscipline() and scenario validation to avoid duplication.
var ValidDisciplines = map[string]bool{
	"":                   true,
	DisciplineFIFO:       true,
	DisciplineLIFO:       true,
	DisciplineRandom:     true,
	DisciplinePriority:   true,
	DisciplineRoundRobin: true,
	DisciplineSJF:        true,
}

// ValidDistributions is the set of recognized distribution type names.
var ValidDistributions = map[string]bool{
	DistExponential:   true,
	DistUniform:       true,
	DistDeterministic: true,
	DistErlang:        true,
}

// IsValidDiscipline returns true if name is a recognized discipline.
func IsValidDiscipline(name string) bool {
	return ValidDisciplines[name]
}

// IsValidDistribution returns true if name is a recognized distribution type.
func IsValidDistribution(name string) bool {
	return ValidDistributions[name]
}

// DisciplineNames returns the non-empty discipline names in sorted order,
// for help text and error messages.
func DisciplineNames() []string {
	names := make([]string, 0, len(ValidDisciplines))
	for name := range ValidDisciplines {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
