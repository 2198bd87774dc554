package models_test

import (
	"testing"

	"github.com/garnizeh/candidatures/internal/models"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in     string
		want   models.Status
		wantOK bool
	}{
		{in: "interview", want: models.StatusInterview, wantOK: true},
		{in: "FollowedUp", want: models.StatusFollowedUp, wantOK: true},
		{in: "relancee", want: models.StatusFollowedUp, wantOK: true},
		{in: " Acceptee ", want: models.StatusAccepted, wantOK: true},
		{in: "", want: models.StatusSubmitted, wantOK: false},
		{in: "ghosted", want: models.StatusSubmitted, wantOK: false},
	}
	for _, c := range cases {
		got, ok := models.ParseStatus(c.in)
		if got != c.want || ok != c.wantOK {
			t.Fatalf("ParseStatus(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.wantOK)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range models.Statuses {
		want := s == models.StatusInterview || s == models.StatusRejected || s == models.StatusAccepted
		if s.Terminal() != want {
			t.Fatalf("%s: Terminal() = %v", s, s.Terminal())
		}
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := models.NormalizeSkills([]string{" go ", "sql", "", "go", "k8s"})
	want := []string{"go", "sql", "k8s"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
