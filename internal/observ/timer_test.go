package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	if err := tm.Measure("load", func() (string, error) { return "3 files", nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	boom := errors.New("boom")
	if err := tm.Measure("commit", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected error passthrough, got %v", err)
	}

	report := tm.Report()
	if len(report.Phases) != 2 || report.Phases[0].Note != "3 files" || report.Phases[1].Note != "error" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if s := tm.Summary(); !strings.Contains(s, "load") || !strings.Contains(s, "total") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestNilTimerIsSafe(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer must report nothing")
	}
}
