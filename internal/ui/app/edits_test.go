package app

import "testing"

func TestParseEdit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    agendaEdit
		wantErr bool
	}{
		{input: "title Weekly Sync", want: agendaEdit{kind: editTitle, text: "Weekly Sync"}},
		{input: "add 10 Open floor", want: agendaEdit{kind: editAdd, minutes: 10, text: "Open floor"}},
		{input: "set 2 15", want: agendaEdit{kind: editSet, index: 1, minutes: 15}},
		{input: "set 2 15 Data review", want: agendaEdit{kind: editSet, index: 1, minutes: 15, text: "Data review"}},
		{input: "color 3 teal", want: agendaEdit{kind: editColor, index: 2, text: "teal"}},
		{input: "remove 1", want: agendaEdit{kind: editRemove}},
		{input: "template save Board sync", want: agendaEdit{kind: editTemplateSave, text: "Board sync"}},
		{input: "template load 7f3a", want: agendaEdit{kind: editTemplateLoad, text: "7f3a"}},
		{input: "", wantErr: true},
		{input: "title", wantErr: true},
		{input: "add ten Topic", wantErr: true},
		{input: "remove 0", wantErr: true},
		{input: "color 1", wantErr: true},
		{input: "template rename x", wantErr: true},
		{input: "dance", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := parseEdit(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}
