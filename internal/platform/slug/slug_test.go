package slug

import "testing"

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"L10 Meeting Agenda": "l10-meeting-agenda",
		"  Q3 / Planning!! ": "q3-planning",
		"???":                "meeting",
		"Weekly sync with the whole platform engineering group and guests": "weekly-sync-with-the-whole-platform-engineering",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}
