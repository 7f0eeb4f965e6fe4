package schedule

import (
	"testing"
	"time"
)

func TestDueAndNext(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	if !Due(time.Time{}, time.Hour, now) || !Next(time.Time{}, time.Hour, now).Equal(now) {
		t.Fatal("never-run job is due immediately")
	}
	last := now.Add(-3 * time.Hour)
	if Due(last, 4*time.Hour, now) {
		t.Fatal("not due before the interval elapses")
	}
	if want := last.Add(4 * time.Hour); !Next(last, 4*time.Hour, now).Equal(want) {
		t.Fatalf("next = %v", Next(last, 4*time.Hour, now))
	}
	if !Due(now.Add(-4*time.Hour), 4*time.Hour, now) {
		t.Fatal("due exactly at the interval")
	}
	if !Next(now.Add(-48*time.Hour), time.Hour, now).Equal(now) {
		t.Fatal("overdue job fires now")
	}
}
