package build

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
)

// Pair is one (tool, target) combination scheduled for a build.
type Pair struct {
	Tool   config.ToolSpec
	Target Target
}

// Filter restricts the tool/target cross-product. Zero values select
// everything.
type Filter struct {
	Family Family
	Tool   string
	Target string
}

// Matrix computes the filtered cross-product of tools and targets. The
// result is ordered tool-major (tools by name, targets in enumeration
// order) so repeated runs produce identical schedules and manifests.
func Matrix(tools []config.ToolSpec, targets []Target, filter Filter) ([]Pair, error) {
	sorted := make([]config.ToolSpec, len(tools))
	copy(sorted, tools)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Name < sorted[b].Name })

	if filter.Tool != "" {
		found := false
		for _, tool := range sorted {
			if tool.Name == filter.Tool {
				sorted = []config.ToolSpec{tool}
				found = true
				break
			}
		}
		if !found {
			return nil, eris.Errorf("Tool %q is not listed in the tool config", filter.Tool)
		}
	}

	selected := make([]Target, 0, len(targets))
	for _, target := range targets {
		if filter.Target != "" && target.Triple != filter.Target {
			continue
		}
		if filter.Family != "" && target.Family != filter.Family {
			continue
		}
		selected = append(selected, target)
	}
	if filter.Target != "" && len(selected) == 0 {
		return nil, eris.Errorf("Invalid target triple %q", filter.Target)
	}

	pairs := make([]Pair, 0, len(sorted)*len(selected))
	for _, tool := range sorted {
		for _, target := range selected {
			pairs = append(pairs, Pair{Tool: tool, Target: target})
		}
	}
	return pairs, nil
}
