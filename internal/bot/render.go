package bot

import (
	"fmt"
	"strings"

	"recbot/internal/catalog"
	"recbot/internal/session"
)

const (
	viewedMark   = "✅"
	unviewedMark = "👁"
)

func renderWelcome() string {
	return "Hi! I keep a small collection of films, series and books worth your time.\nPick a section below."
}

func renderCategoryPrompt() string {
	return "What are you in the mood for?"
}

// renderFilterScreen shows the active selection and the live match count for
// the genre-filter screen.
func renderFilterScreen(category catalog.Category, f *session.Filter, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %d found\n", category.Title(), count)

	if selected := f.Genres(); len(selected) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(selected, ", "))
	}
	if f.ViewedOnly {
		b.WriteString("Only viewed\n")
	}
	b.WriteString("\nNarrow down by genre, or show the results.")
	return b.String()
}

// renderEntryCard formats one catalog entry. The viewed flag adds a check
// mark after the title.
func renderEntryCard(e *catalog.Entry, genres []string, viewed bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)", e.Name, e.Year)
	if viewed {
		b.WriteString(" " + viewedMark)
	}
	b.WriteString("\n")

	if len(genres) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(genres, ", "))
	}

	ratings := renderRatings(e)
	if ratings != "" {
		b.WriteString(ratings + "\n")
	}
	if e.Description != "" {
		b.WriteString("\n" + e.Description)
	}
	return b.String()
}

func renderRatings(e *catalog.Entry) string {
	var parts []string
	if e.AdminRating != nil {
		parts = append(parts, fmt.Sprintf("My rating: %.1f", *e.AdminRating))
	}
	if e.SiteRating != nil {
		parts = append(parts, fmt.Sprintf("Site rating: %.1f", *e.SiteRating))
	}
	return strings.Join(parts, " | ")
}

func renderPageFooter(page, totalPages, total int) string {
	return fmt.Sprintf("Page %d of %d — %d total", page+1, totalPages, total)
}

func renderEmptyResults(category catalog.Category) string {
	return fmt.Sprintf("Nothing found in %s with this filter.", category.Title())
}

func renderFieldPrompt(field catalog.Field, current string) string {
	if current == "" {
		current = "—"
	}
	return fmt.Sprintf("Current %s:\n%s\n\nSend the new value.", strings.ToLower(field.Label()), current)
}

// currentFieldValue formats the present value of a field for the edit prompt.
func currentFieldValue(e *catalog.Entry, genres []string, field catalog.Field) string {
	switch field {
	case catalog.FieldName:
		return e.Name
	case catalog.FieldYear:
		return fmt.Sprintf("%d", e.Year)
	case catalog.FieldDescription:
		return e.Description
	case catalog.FieldURL:
		return e.URL
	case catalog.FieldImage:
		return e.Image
	case catalog.FieldAdminRating:
		if e.AdminRating != nil {
			return fmt.Sprintf("%.1f", *e.AdminRating)
		}
	case catalog.FieldSiteRating:
		if e.SiteRating != nil {
			return fmt.Sprintf("%.1f", *e.SiteRating)
		}
	case catalog.FieldGenres:
		return strings.Join(genres, ", ")
	}
	return ""
}
