package debug

import (
	"testing"
)

func TestTreeWriter_Empty(t *testing.T) {
	if got := NewTreeWriter().String(); got != "" {
		t.Errorf("String() = %q, want empty", got)
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", format: "test", want: "test\n"},
		{name: "depth 1", depth: 1, format: "indented", want: "  indented\n"},
		{name: "depth 2", depth: 2, format: "double indent", want: "    double indent\n"},
		{name: "with formatting", depth: 1, format: "value: %d", args: []any{42}, want: "  value: 42\n"},
		{name: "multiple args", format: "%s = %d", args: []any{"count", 5}, want: "count = 5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{name: "empty value", label: "field", want: "field: \n"},
		{name: "with value", label: "text", value: "hello world", want: "text: \"hello world\"\n"},
		{name: "nested", depth: 2, label: "nested", value: "data", want: "    nested: \"data\"\n"},
		{name: "quotes", label: "quoted", value: `he said "hello"`, want: "quoted: \"he said \\\"hello\\\"\"\n"},
		{name: "newline", label: "multiline", value: "line1\nline2", want: "multiline: \"line1\\nline2\"\n"},
		{name: "backslash", label: "path", value: `a\b`, want: "path: \"a\\\\b\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_List(t *testing.T) {
	tw := NewTreeWriter()
	tw.List(0, "Empty", nil)
	tw.List(1, "Dangling", []string{"a", "b c"})

	want := "  Dangling: 2\n    \"a\"\n    \"b c\"\n"
	if got := tw.String(); got != want {
		t.Errorf("List() = %q, want %q", got, want)
	}
}

func TestTreeWriter_WithIndent(t *testing.T) {
	tw := NewTreeWriter().WithIndent("\t")
	tw.Line(0, "root")
	tw.Line(2, "leaf")
	tw.TextBlock(1, "label", "x")

	want := "root\n\t\tleaf\n\tlabel: \"x\"\n"
	if got := tw.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
