package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type members []string

func (m members) Table(wide bool) *Table {
	t := &Table{Headers: []string{"NAME"}}
	if wide {
		t.Headers = append(t.Headers, "INDEX")
	}
	for i, name := range m {
		row := []string{name}
		if wide {
			row = append(row, Cell(i))
		}
		t.AddRow(row...)
	}
	return t
}

func TestTableFormatter_Table(t *testing.T) {
	tbl := &Table{}
	tbl.SetHeaders("ID", "STATUS")
	tbl.AddRow("1", "up")
	tbl.AddRow("22", "down")

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "ID  STATUS\n1   up\n22  down\n"
	if got := buf.String(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestTableFormatter_NoHeaders(t *testing.T) {
	tbl := &Table{Headers: []string{"ID"}, Rows: [][]string{{"7"}}}

	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := buf.String(); got != "7\n" {
		t.Errorf("Format() = %q, want %q", got, "7\n")
	}
}

func TestTableFormatter_Tabular(t *testing.T) {
	data := members{"backend-1", "frontend-1"}

	var narrow, wide bytes.Buffer
	if err := (&TableFormatter{}).Format(&narrow, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if err := (&TableFormatter{Wide: true}).Format(&wide, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if strings.Contains(narrow.String(), "INDEX") {
		t.Errorf("narrow output has wide column: %q", narrow.String())
	}
	if !strings.Contains(wide.String(), "INDEX") || !strings.Contains(wide.String(), "frontend-1  1") {
		t.Errorf("wide output = %q", wide.String())
	}
}

func TestTableFormatter_Map(t *testing.T) {
	data := map[string]any{"node.role": "backend", "cluster.seeds": []string{}, "ledger.batch_size": 100}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "KEY") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "cluster.seeds") || !strings.HasSuffix(lines[1], "-") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "node.role") {
		t.Errorf("keys not sorted: %q", buf.String())
	}
}

func TestTableFormatter_FallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []int{1, 2}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "[") {
		t.Errorf("Format() = %q, want JSON array", buf.String())
	}
}

func TestTableFormatter_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Format(nil) wrote %q", buf.String())
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{"", "-"},
		{"x", "x"},
		{[]string{}, "-"},
		{[]string{"a", "b"}, "a,b"},
		{3 * time.Second, "3s"},
		{42, "42"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Cell(tt.in); got != tt.want {
			t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
