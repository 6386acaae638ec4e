package actions

import (
	"reflect"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		verb string
		args []string
		want string
	}{
		{"category", []string{"films"}, "category:films"},
		{"genre", []string{"films", "drama"}, "genre:films:drama"},
		{"page", []string{"series", "2"}, "page:series:2"},
		{"admin", []string{"panel"}, "admin:panel"},
		{"edit_cancel", nil, "edit_cancel"},
	}
	for _, tt := range tests {
		got := Encode(tt.verb, tt.args...)
		if got != tt.want {
			t.Errorf("Encode(%q, %v) = %q, want %q", tt.verb, tt.args, got, tt.want)
		}
		a := Decode(got)
		if a.Verb != tt.verb {
			t.Errorf("Decode(%q).Verb = %q, want %q", got, a.Verb, tt.verb)
		}
		if len(tt.args) > 0 && !reflect.DeepEqual(a.Args, tt.args) {
			t.Errorf("Decode(%q).Args = %v, want %v", got, a.Args, tt.args)
		}
	}
}

func TestDecodeTolerance(t *testing.T) {
	if a := Decode(""); !a.IsZero() {
		t.Errorf("Decode(\"\") = %+v, want zero", a)
	}
	if a := Decode("  "); !a.IsZero() {
		t.Errorf("Decode(blank) = %+v, want zero", a)
	}
	// telebot prefixes callback data with \f for its own buttons.
	if a := Decode("\fview:films:42"); a.Verb != "view" || a.Arg(1) != "42" {
		t.Errorf("Decode with prefix = %+v", a)
	}
}

func TestArgOutOfRange(t *testing.T) {
	a := Decode("category:films")
	if got := a.Arg(5); got != "" {
		t.Errorf("Arg(5) = %q, want empty", got)
	}
	if got := a.Arg(-1); got != "" {
		t.Errorf("Arg(-1) = %q, want empty", got)
	}
}
