package spacedrep

import (
	"sort"
	"time"
)

// DefaultQueueLimit caps the review queue when no limit is configured.
const DefaultQueueLimit = 20

// DueQueue returns the answered items that are due for review at now,
// sorted by most overdue first. A limit <= 0 returns every due item.
func DueQueue(states []*ReviewState, now time.Time, limit int) []*ReviewState {
	type dueItem struct {
		state   *ReviewState
		overdue float64
	}
	var due []dueItem

	for _, rs := range states {
		if rs == nil || !rs.IsDue(now) {
			continue
		}
		due = append(due, dueItem{state: rs, overdue: rs.OverdueDays(now)})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].state.ItemID < due[j].state.ItemID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	queue := make([]*ReviewState, len(due))
	for i, d := range due {
		queue[i] = d.state
	}
	return queue
}
