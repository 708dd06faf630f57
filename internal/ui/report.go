package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/obstack/obstack/internal/orchestration"
)

// RenderReport writes the pipeline summary to w.
func RenderReport(w io.Writer, report *orchestration.Report) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Deployment report"))
	b.WriteString("\n\n")

	if report.PreflightOK {
		fmt.Fprintf(&b, "%s preflight\n", okStyle.Render(checkMark))
	} else {
		fmt.Fprintf(&b, "%s preflight\n", failStyle.Render(crossMark))
	}

	if report.Prepull != nil {
		mark := okStyle.Render(checkMark)
		if len(report.Prepull.Failed) > 0 {
			mark = warnStyle.Render(warnMark)
		}
		fmt.Fprintf(&b, "%s pre-pull via %s: %d pulled, %d deferred\n",
			mark, report.Prepull.Backend, len(report.Prepull.Succeeded), len(report.Prepull.Failed))
	} else {
		fmt.Fprintf(&b, "%s pre-pull skipped\n", dimStyle.Render(skipMark))
	}

	for _, rel := range report.Releases {
		switch {
		case !rel.Installed:
			fmt.Fprintf(&b, "%s %s: install failed\n", failStyle.Render(crossMark), rel.Name)
		case !rel.Ready:
			fmt.Fprintf(&b, "%s %s: installed, not ready\n", failStyle.Render(crossMark), rel.Name)
		case rel.VerifyWarning != "":
			fmt.Fprintf(&b, "%s %s: ready, verification warning: %s\n",
				warnStyle.Render(warnMark), rel.Name, rel.VerifyWarning)
		default:
			fmt.Fprintf(&b, "%s %s: ready\n", okStyle.Render(checkMark), rel.Name)
		}
	}

	if !report.Finished.IsZero() {
		fmt.Fprintf(&b, "\n%s\n", dimStyle.Render(fmt.Sprintf("completed in %s", report.Finished.Sub(report.Started).Round(1e9))))
	}

	fmt.Fprint(w, b.String())
}
