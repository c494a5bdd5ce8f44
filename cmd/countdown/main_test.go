package main

import (
	"bytes"
	"strings"
	"testing"

	agendadto "countdown/internal/modules/agenda/dto"
)

func TestParseItemSpec(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  string
		want agendadto.ItemInput
	}{
		{raw: "Intro:5", want: agendadto.ItemInput{Title: "Intro", Minutes: 5}},
		{raw: "Demo:15:teal", want: agendadto.ItemInput{Title: "Demo", Minutes: 15, Color: "teal"}},
		{raw: "Q3: roadmap:10", want: agendadto.ItemInput{Title: "Q3: roadmap", Minutes: 10}},
	}
	for _, tc := range cases {
		got, err := parseItemSpec(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
	for _, raw := range []string{"Intro", "Intro:five", "Intro:five:teal"} {
		if _, err := parseItemSpec(raw); err == nil {
			t.Fatalf("expected %q to fail", raw)
		}
	}
}

func TestAgendaAndTemplateCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COUNTDOWN_DATA_DIR", dir)
	t.Setenv("COUNTDOWN_WEBHOOK_URL", "")

	run := func(args ...string) string {
		t.Helper()
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out.String())
		}
		return out.String()
	}

	out := run("agenda", "set", "--title", "Weekly sync", "--item", "Intro:5:blue", "--item", "Updates:20")
	if !strings.Contains(out, "Weekly sync (25 min)") || !strings.Contains(out, "Intro\t5 min\tblue") {
		t.Fatalf("unexpected agenda output:\n%s", out)
	}
	out = run("agenda", "add", "Wrap-up", "5", "--color", "rose")
	if !strings.Contains(out, " 3. Wrap-up\t5 min\trose") {
		t.Fatalf("unexpected add output:\n%s", out)
	}
	out = run("agenda", "edit", "1", "--color", "none")
	if strings.Contains(out, "Intro\t5 min\tblue") {
		t.Fatalf("color was not cleared:\n%s", out)
	}
	out = run("agenda", "remove", "2")
	if strings.Contains(out, "Updates") || !strings.Contains(out, "(10 min)") {
		t.Fatalf("unexpected remove output:\n%s", out)
	}
	if out := run("template", "save", "Short sync"); !strings.Contains(out, "saved template Short sync") {
		t.Fatalf("unexpected save output:\n%s", out)
	}
	if out := run("template", "list"); !strings.Contains(out, "Short sync\t2 items\t10 min") {
		t.Fatalf("unexpected template list:\n%s", out)
	}
	if out := run("status"); !strings.Contains(out, "has no published state") {
		t.Fatalf("unexpected status:\n%s", out)
	}
	if out := run("history"); !strings.Contains(out, "no meetings") {
		t.Fatalf("unexpected history:\n%s", out)
	}
	if out := run("send", "pause"); !strings.Contains(out, "sent pause to session default") {
		t.Fatalf("unexpected send output:\n%s", out)
	}
}
