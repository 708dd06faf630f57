package release

import "fmt"

// Order returns the releases in a deterministic dependency order: every
// release appears after everything it Needs, and releases whose dependencies
// are equally satisfied keep their input order. Unknown dependency names and
// cycles are configuration errors.
func Order(releases []Release) ([]Release, error) {
	byName := make(map[string]int, len(releases))
	for i, r := range releases {
		if _, dup := byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate release name %q", r.Name)
		}
		byName[r.Name] = i
	}

	indegree := make([]int, len(releases))
	dependents := make([][]int, len(releases))
	for i, r := range releases {
		for _, need := range r.Needs {
			j, ok := byName[need]
			if !ok {
				return nil, fmt.Errorf("release %q needs unknown release %q", r.Name, need)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Kahn's algorithm; the ready set is scanned in input order so the
	// result is stable for a given descriptor list.
	ordered := make([]Release, 0, len(releases))
	done := make([]bool, len(releases))
	for len(ordered) < len(releases) {
		progressed := false
		for i := range releases {
			if done[i] || indegree[i] != 0 {
				continue
			}
			done[i] = true
			ordered = append(ordered, releases[i])
			for _, dep := range dependents[i] {
				indegree[dep]--
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("dependency cycle among releases")
		}
	}

	return ordered, nil
}

// Reverse returns a copy of releases in reverse order. Teardown uninstalls
// in reverse dependency order.
func Reverse(releases []Release) []Release {
	out := make([]Release, len(releases))
	for i, r := range releases {
		out[len(releases)-1-i] = r
	}
	return out
}
