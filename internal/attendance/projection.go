// Package attendance computes per-course attendance projections against the
// 75% compliance threshold and serves them over HTTP.
package attendance

import "fmt"

// Threshold is the minimum attendance ratio required to remain in good standing.
const Threshold = 0.75

// Status classifies a course component against the threshold.
type Status string

const (
	StatusSafe         Status = "safe"
	StatusWarning      Status = "warning"
	StatusUndetermined Status = "undetermined" // no sessions held yet
)

// Projection is the forward-looking result for one (present, total) pair.
type Projection struct {
	Status       Status  `json:"status"`
	Message      string  `json:"message"`
	Percentage   float64 `json:"percentage"`
	CanMiss      int     `json:"can_miss"`
	NeedToAttend int     `json:"need_to_attend"`
}

// Project computes whether the current ratio meets the 75% threshold and how
// many future sessions can be missed (safe) or must be attended (warning).
//
// A missed session adds to total only: p/(t+m) >= 3/4 gives m <= (4p-3t)/3.
// An attended session adds to both: (p+n)/(t+n) >= 3/4 gives n >= 3t-4p.
// With integer counts both bounds are exact, so no floating point is used.
func Project(present, total int) Projection {
	if total <= 0 || present < 0 {
		return Projection{
			Status:  StatusUndetermined,
			Message: "No sessions recorded yet",
		}
	}

	pct := float64(present) / float64(total) * 100

	if 4*present >= 3*total {
		canMiss := (4*present - 3*total) / 3
		return Projection{
			Status:     StatusSafe,
			Message:    safeMessage(canMiss),
			Percentage: pct,
			CanMiss:    canMiss,
		}
	}

	needToAttend := 3*total - 4*present
	return Projection{
		Status:       StatusWarning,
		Message:      warningMessage(needToAttend),
		Percentage:   pct,
		NeedToAttend: needToAttend,
	}
}

func safeMessage(canMiss int) string {
	switch {
	case canMiss == 1:
		return "You can miss 1 more class"
	case canMiss > 1:
		return fmt.Sprintf("You can miss %d more classes", canMiss)
	default:
		return "Don't miss any more classes"
	}
}

func warningMessage(needToAttend int) string {
	if needToAttend == 1 {
		return "Need to attend next 1 class"
	}
	return fmt.Sprintf("Need to attend next %d classes", needToAttend)
}
