package query

import (
	"strings"
	"testing"
)

func TestNew_CombinesSubjectAndTopic(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		topic   string
		want    string
	}{
		{"both", "math", "fractions", "math fractions"},
		{"topic only", "", "photosynthesis", "photosynthesis"},
		{"subject only", "history", "", "history"},
		{"trims", "  math ", " fractions  ", "math fractions"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := New(tc.subject, tc.topic, "", "", 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Topic() != tc.want {
				t.Errorf("Topic() = %q, want %q", q.Topic(), tc.want)
			}
		})
	}
}

func TestNew_RequiresTopicOrSubject(t *testing.T) {
	if _, err := New("", "   ", "es", "", 5); err == nil {
		t.Fatal("expected error for empty topic and subject")
	}
}

func TestNew_Defaults(t *testing.T) {
	q, err := New("", "algebra", "", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Language() != DefaultLanguage {
		t.Errorf("language = %q, want %q", q.Language(), DefaultLanguage)
	}
	if q.GradeLevel() != DefaultGradeLevel {
		t.Errorf("grade = %q, want %q", q.GradeLevel(), DefaultGradeLevel)
	}
	if q.MaxResults() != DefaultMaxResults {
		t.Errorf("max = %d, want %d", q.MaxResults(), DefaultMaxResults)
	}
}

func TestNew_MaxResultsRange(t *testing.T) {
	for _, n := range []int{-1, 21, 100} {
		if _, err := New("", "algebra", "en", "", n); err == nil {
			t.Errorf("expected error for max_results=%d", n)
		}
	}
	for _, n := range []int{1, 20} {
		if _, err := New("", "algebra", "en", "", n); err != nil {
			t.Errorf("max_results=%d: unexpected error: %v", n, err)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a, _ := New("", "Quantum  Physics", "EN", "university", 5)
	b, _ := New("", "quantum physics", "en", "university", 5)
	c, _ := New("", "quantum physics", "en", "university", 10)
	d, _ := New("", "quantum physics", "es", "university", 5)

	if a.Fingerprint("text") != b.Fingerprint("text") {
		t.Error("normalized topics should share a fingerprint")
	}
	if b.Fingerprint("text") == c.Fingerprint("text") {
		t.Error("different max_results should not share a fingerprint")
	}
	if b.Fingerprint("text") == d.Fingerprint("text") {
		t.Error("different languages should not share a fingerprint")
	}
	if b.Fingerprint("text") == b.Fingerprint("videos") {
		t.Error("different kinds should not share a fingerprint")
	}
	if !strings.HasPrefix(b.Fingerprint("text"), "text:en:university:") {
		t.Errorf("unexpected fingerprint layout: %s", b.Fingerprint("text"))
	}
}
