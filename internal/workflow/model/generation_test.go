package model

import "testing"

func TestRevisionTargetValid(t *testing.T) {
	cases := []struct {
		target RevisionTarget
		want   bool
	}{
		{RevisionTargetOutline, true},
		{RevisionTargetChapter, true},
		{RevisionTarget(""), false},
		{RevisionTarget("book"), false},
	}
	for _, tc := range cases {
		if got := tc.target.Valid(); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestRevisionInputPayloadByTarget(t *testing.T) {
	outline := NewOutlineRevisionInput("groq", "Chapter 1: Start", "tighten the pacing")
	original, feedback, err := outline.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original != "Chapter 1: Start" || feedback != "tighten the pacing" {
		t.Errorf("outline payload = (%q, %q)", original, feedback)
	}

	chapter := NewChapterRevisionInput("groq", "It was a dark night.", "more dialogue")
	original, feedback, err = chapter.Payload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original != "It was a dark night." || feedback != "more dialogue" {
		t.Errorf("chapter payload = (%q, %q)", original, feedback)
	}
}

func TestRevisionInputPayloadRejectsMismatch(t *testing.T) {
	cases := []struct {
		name string
		in   *RevisionInput
	}{
		{"outline target without payload", &RevisionInput{Target: RevisionTargetOutline}},
		{"chapter target without payload", &RevisionInput{Target: RevisionTargetChapter}},
		{"unknown target", &RevisionInput{
			Target:  RevisionTarget("book"),
			Outline: &OutlineRevision{OutlineText: "text", NotesAfter: "notes"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.in.Payload(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
