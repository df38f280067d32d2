package spacedrep

import (
	"testing"
	"time"
)

func TestDueQueue_OrdersMostOverdueFirst(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	a := answeredState(now.Add(-24*time.Hour), 1)
	a.ItemID = "a"
	b := answeredState(now.Add(-72*time.Hour), 1)
	b.ItemID = "b"
	c := answeredState(now.Add(24*time.Hour), 1)
	c.ItemID = "c"
	d := answeredState(now.Add(-24*time.Hour), 1)
	d.ItemID = "0d"

	got := DueQueue([]*ReviewState{a, b, c, d, nil}, now, 0)
	want := []string{"b", "0d", "a"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ItemID != id {
			t.Errorf("queue[%d] = %q, want %q", i, got[i].ItemID, id)
		}
	}
}

func TestDueQueue_Limit(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	var states []*ReviewState
	for i := 0; i < 30; i++ {
		rs := answeredState(now.Add(-time.Duration(i+1)*time.Hour), 1)
		states = append(states, rs)
	}

	got := DueQueue(states, now, DefaultQueueLimit)
	if len(got) != DefaultQueueLimit {
		t.Errorf("len = %d, want %d", len(got), DefaultQueueLimit)
	}
}

func TestDueQueue_SkipsUnanswered(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	rs := &ReviewState{ItemID: "x", NextReview: &past}

	if got := DueQueue([]*ReviewState{rs}, now, 0); len(got) != 0 {
		t.Errorf("expected empty queue, got %d items", len(got))
	}
}
