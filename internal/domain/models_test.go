package domain

import (
	"reflect"
	"testing"
)

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusProcessing, true},
		{JobStatusProcessing, JobStatusCompleted, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusPending, JobStatusFailed, false},
		{JobStatusCompleted, JobStatusProcessing, false},
		{JobStatusFailed, JobStatusPending, false},
		{JobStatusCompleted, JobStatusFailed, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	if JobStatusPending.Terminal() || JobStatusProcessing.Terminal() {
		t.Error("pending/processing should not be terminal")
	}
	if !JobStatusCompleted.Terminal() || !JobStatusFailed.Terminal() {
		t.Error("completed/failed should be terminal")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Multiple   Spaces  ", "multiple-spaces"},
		{"Punctuation! & Symbols?", "punctuation-symbols"},
		{"--already--dashed--", "already-dashed"},
		{"UPPER case", "upper-case"},
		{"", ""},
		{"!!!", ""},
		{"\n\nSecond Line Wins\nthird", "second-line-wins"},
	}

	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseTagList(t *testing.T) {
	got := ParseTagList("Video, Cool Stuff,,archived!")
	want := []string{"video", "cool-stuff", "archived"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTagList = %v, want %v", got, want)
	}

	if got := ParseTagList(""); got != nil {
		t.Errorf("Expected nil for empty input, got %v", got)
	}
}
