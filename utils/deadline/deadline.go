package deadline

import (
	"fmt"
	"time"
)

// Tier is the four-level urgency classification for a program deadline
type Tier string

const (
	TierOverdue  Tier = "overdue"
	TierCritical Tier = "critical"
	TierSoon     Tier = "soon"
	TierSafe     Tier = "safe"
)

// Urgency is the classification result for one deadline
type Urgency struct {
	DaysUntil int    `json:"days_until"`
	Tier      Tier   `json:"tier"`
	Label     string `json:"label"`
}

// Classify maps a deadline and a reference time into an urgency tier.
// DaysUntil is deadline minus now truncated to whole days, negative once
// the deadline has passed. The caller supplies now, so repeated calls
// with the same inputs always return the same result.
func Classify(deadline, now time.Time) Urgency {
	daysUntil := int(deadline.Sub(now).Hours() / 24)

	var tier Tier
	switch {
	case daysUntil < 0:
		tier = TierOverdue
	case daysUntil < 15:
		tier = TierCritical
	case daysUntil < 30:
		tier = TierSoon
	default:
		tier = TierSafe
	}

	return Urgency{
		DaysUntil: daysUntil,
		Tier:      tier,
		Label:     label(daysUntil, deadline),
	}
}

func label(daysUntil int, deadline time.Time) string {
	switch {
	case daysUntil < 0:
		return fmt.Sprintf("overdue by %d days", -daysUntil)
	case daysUntil == 0:
		return "due today"
	case daysUntil == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("%d days until %s", daysUntil, deadline.Format("Jan 2, 2006"))
	}
}
