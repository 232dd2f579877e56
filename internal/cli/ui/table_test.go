package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"POD", "TYPES"}, &TableOptions{NoColor: true})
	table.AddRow("geom", "2")
	table.AddRow("text", "10")

	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "POD   TYPES" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "────  ─────" {
		t.Errorf("unexpected separator %q", lines[1])
	}
	if lines[2] != "geom  2" {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[3] != "text  10" {
		t.Errorf("unexpected row %q", lines[3])
	}
}

func TestTableUnicodeWidths(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"NAME", "BASE"}, &TableOptions{NoColor: true})
	table.AddRow("Größe", "x")
	table.AddRow("a", "y")

	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[2] != "Größe  x" {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[3] != "a      y" {
		t.Errorf("unexpected row %q", lines[3])
	}
}

func TestTableShortAndLongRows(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, &TableOptions{NoColor: true})
	table.AddRow("only")
	table.AddRow("1", "2", "dropped")

	if table.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Len())
	}

	table.Render()
	if strings.Contains(buf.String(), "dropped") {
		t.Error("extra cell should not be rendered")
	}
}

func TestTableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, nil, nil).Render()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("qname", "geom::Circle")
	table.AddRow("base", "geom::Point")

	table.Render()

	expected := "qname: geom::Circle\nbase:  geom::Point\n"
	if buf.String() != expected {
		t.Errorf("got %q, want %q", buf.String(), expected)
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "geom", true)

	if buf.String() != "geom\n────\n" {
		t.Errorf("unexpected header %q", buf.String())
	}
}
