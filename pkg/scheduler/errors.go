package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/dateutil"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// maxDiagnosedCandidates caps how many pool members an unfillable-slot error
// explains in detail.
const maxDiagnosedCandidates = 5

// CandidateDiagnosis lists the rules one candidate violated for a slot.
type CandidateDiagnosis struct {
	Name       string   `json:"name"`
	Violations []string `json:"violations"`
}

// UnfillableSlotError reports the first slot of a build for which no
// candidate satisfied the hard constraints. It aborts the whole build.
type UnfillableSlotError struct {
	Date       time.Time            `json:"date"`
	ShiftType  models.ShiftType     `json:"shift_type"`
	Index      int                  `json:"index"`
	Candidates []CandidateDiagnosis `json:"candidates"`
}

func (e *UnfillableSlotError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no valid candidate for %s duty on %s (index %d)\n",
		e.ShiftType, dateutil.FormatDate(e.Date), e.Index)
	b.WriteString("constraint check results:\n")
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "  candidate %s:\n", c.Name)
		if len(c.Violations) == 0 {
			b.WriteString("    all constraints satisfied\n")
			continue
		}
		for _, v := range c.Violations {
			fmt.Fprintf(&b, "    violated: %s\n", v)
		}
	}
	b.WriteString("suggested remediation:\n")
	b.WriteString("  1. review the NG date configuration (ng_dates.yaml)\n")
	b.WriteString("  2. review member active flags (settings.yaml)\n")
	b.WriteString("  3. consider relaxing the interval constraint parameters\n")
	return b.String()
}
