package keyboard

import "testing"

func TestChunk(t *testing.T) {
	buttons := []Btn{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}, {Text: "e"}}

	rows := Chunk(buttons, 2)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if len(rows[2]) != 1 || rows[2][0].Text != "e" {
		t.Fatalf("last row = %v", rows[2])
	}

	rows = Chunk(buttons, 0)
	if len(rows) != 5 {
		t.Fatalf("n<=1: len(rows) = %d, want 5", len(rows))
	}
}

func TestInlineCarriesRawData(t *testing.T) {
	markup := Inline([]Btn{{Text: "Drama", Data: "genre:films:drama"}, {Text: "Site", URL: "https://example.org"}})
	row := markup.InlineKeyboard[0]
	if row[0].Data != "genre:films:drama" {
		t.Fatalf("Data = %q", row[0].Data)
	}
	if row[1].URL != "https://example.org" {
		t.Fatalf("URL = %q", row[1].URL)
	}
}
