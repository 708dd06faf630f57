package orchestration

import (
	"time"

	"github.com/obstack/obstack/internal/prepull"
)

// ReleaseResult records how far one release got through the pipeline.
type ReleaseResult struct {
	Name      string
	Namespace string

	Installed bool
	Ready     bool
	Verified  bool

	// VerifyWarning carries the non-fatal verification failure, if any.
	VerifyWarning string
}

// Report is the final pipeline summary.
type Report struct {
	Started  time.Time
	Finished time.Time

	PreflightOK bool
	Prepull     *prepull.Report
	Releases    []ReleaseResult
}

// Succeeded reports whether every release made it through install and
// readiness. Verification warnings do not count against success.
func (r *Report) Succeeded(expected int) bool {
	if len(r.Releases) != expected {
		return false
	}
	for _, rel := range r.Releases {
		if !rel.Installed || !rel.Ready {
			return false
		}
	}
	return true
}
