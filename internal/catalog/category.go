package catalog

import (
	"fmt"
	"strings"
)

// Category identifies a catalog section.
type Category string

const (
	// CategoryFilms groups feature film entries.
	CategoryFilms Category = "films"
	// CategorySeries groups TV series entries.
	CategorySeries Category = "series"
	// CategoryBooks groups book entries.
	CategoryBooks Category = "books"
)

// Categories lists every known category in menu order.
func Categories() []Category {
	return []Category{CategoryFilms, CategorySeries, CategoryBooks}
}

// ParseCategory validates a raw category value coming from a button payload.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryFilms:
		return CategoryFilms, nil
	case CategorySeries:
		return CategorySeries, nil
	case CategoryBooks:
		return CategoryBooks, nil
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Title returns the human-readable label for the category.
func (c Category) Title() string {
	switch c {
	case CategoryFilms:
		return "Films"
	case CategorySeries:
		return "Series"
	case CategoryBooks:
		return "Books"
	}
	return string(c)
}
