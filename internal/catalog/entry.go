package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one catalog item as stored in the entries table.
type Entry struct {
	ID          int64    `db:"id"`
	Type        Category `db:"type"`
	Name        string   `db:"name"`
	Year        int      `db:"year"`
	Description string   `db:"description"`
	URL         string   `db:"url"`
	Image       string   `db:"image"`
	AdminRating *float64 `db:"admin_rating"`
	SiteRating  *float64 `db:"site_rating"`
}

// HasLink reports whether the entry carries an http(s) URL worth a link button.
func (e *Entry) HasLink() bool {
	return strings.HasPrefix(e.URL, "http://") || strings.HasPrefix(e.URL, "https://")
}

// Draft is an entry under construction by the guided data-entry flow.
type Draft struct {
	Type        Category
	Name        string
	Year        int
	Description string
	URL         string
	Image       string
	AdminRating float64
	SiteRating  float64
	Genres      []string
}

// Field names an editable entry attribute. The values double as the
// edit_field button payload and, except for FieldGenres, as column names.
type Field string

const (
	FieldName        Field = "name"
	FieldYear        Field = "year"
	FieldDescription Field = "description"
	FieldURL         Field = "url"
	FieldImage       Field = "image"
	FieldAdminRating Field = "admin_rating"
	FieldSiteRating  Field = "site_rating"
	FieldGenres      Field = "genres"
)

// EditableFields lists fields in the order the edit chooser presents them.
func EditableFields() []Field {
	return []Field{
		FieldName, FieldYear, FieldDescription, FieldURL,
		FieldImage, FieldAdminRating, FieldSiteRating, FieldGenres,
	}
}

// ParseField validates a raw field value coming from a button payload.
func ParseField(raw string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range EditableFields() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", raw)
}

// Label returns the chooser button text for the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldYear:
		return "Year"
	case FieldDescription:
		return "Description"
	case FieldURL:
		return "Link"
	case FieldImage:
		return "Image"
	case FieldAdminRating:
		return "Admin rating"
	case FieldSiteRating:
		return "Site rating"
	case FieldGenres:
		return "Genres"
	}
	return string(f)
}

// ParseYear coerces a free-text reply into a release year.
func ParseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse year %q: %w", raw, err)
	}
	return year, nil
}

// ParseRating coerces a free-text reply into a rating. Both '.' and ','
// are accepted as the decimal separator.
func ParseRating(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	rating, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", raw, err)
	}
	return rating, nil
}

// SplitGenres splits a comma-separated reply into trimmed genre names,
// dropping empty segments.
func SplitGenres(raw string) []string {
	parts := strings.Split(raw, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		genres = append(genres, name)
	}
	return genres
}
