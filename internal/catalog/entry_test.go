package catalog

import (
	"reflect"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"films", CategoryFilms, false},
		{" Series ", CategorySeries, false},
		{"BOOKS", CategoryBooks, false},
		{"music", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseCategory(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseRatingSeparators(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"7.5", 7.5},
		{"7,5", 7.5},
		{" 8.2 ", 8.2},
		{"9", 9},
	}
	for _, tc := range cases {
		got, err := ParseRating(tc.in)
		if err != nil {
			t.Errorf("ParseRating(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRating(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "high", "7,5,0"} {
		if _, err := ParseRating(bad); err == nil {
			t.Errorf("ParseRating(%q): expected error", bad)
		}
	}
}

func TestParseYear(t *testing.T) {
	if y, err := ParseYear(" 1999 "); err != nil || y != 1999 {
		t.Fatalf("ParseYear = %d, %v", y, err)
	}
	if _, err := ParseYear("nineteen"); err == nil {
		t.Fatal("expected error for non-numeric year")
	}
}

func TestSplitGenres(t *testing.T) {
	got := SplitGenres("drama, thriller , ,sci-fi")
	want := []string{"drama", "thriller", "sci-fi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitGenres = %v, want %v", got, want)
	}
	if got := SplitGenres("  "); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestParseField(t *testing.T) {
	for _, f := range EditableFields() {
		got, err := ParseField(string(f))
		if err != nil || got != f {
			t.Errorf("ParseField(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseField("id"); err == nil {
		t.Fatal("id must not be editable")
	}
}

func TestEntryHasLink(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.org/t", true},
		{"http://example.org", true},
		{"ftp://example.org", false},
		{"no link", false},
		{"", false},
	}
	for _, tc := range cases {
		e := Entry{URL: tc.url}
		if got := e.HasLink(); got != tc.want {
			t.Errorf("HasLink(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
