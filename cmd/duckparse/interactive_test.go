package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i64/duckparse/parse"
)

func sample(t *testing.T) *parse.Instance {
	t.Helper()
	point := parse.Section("point", parse.F("x", parse.U8), parse.F("y", parse.U8))
	s := parse.Stream("rec",
		parse.F("tag", parse.StringZ("ascii")),
		parse.F("points", parse.RepeatN(parse.Struct(point), parse.Lit(2))),
		parse.F("raw", parse.Bytes(parse.Lit(2))),
	)
	inst, err := parse.ParseBytes(s, []byte{'o', 'k', 0, 1, 2, 3, 4, 0xAB, 0xCD})
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

func TestFlatten(t *testing.T) {
	rows := flatten(sample(t))

	want := []struct {
		path  string
		value string
		depth int
	}{
		{"tag", `"ok"`, 0},
		{"points", "2 items", 0},
		{"points[0]", "point", 1},
		{"points[0].x", "1", 2},
		{"points[0].y", "2", 2},
		{"points[1]", "point", 1},
		{"points[1].x", "3", 2},
		{"points[1].y", "4", 2},
		{"raw", "abcd", 0},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}
	for i, w := range want {
		r := rows[i]
		if r.path != w.path || r.value != w.value || r.depth != w.depth {
			t.Errorf("row %d = {%s %s %d}, want {%s %s %d}", i, r.path, r.value, r.depth, w.path, w.value, w.depth)
		}
	}
}

func TestFilterRows(t *testing.T) {
	rows := flatten(sample(t))

	tests := []struct {
		query string
		want  int
	}{
		{"", 9},
		{"points[1]", 3},
		{".y", 2},
		{"missing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := len(filterRows(rows, tt.query)); got != tt.want {
				t.Errorf("filterRows(%q) = %d rows, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestBrowseModel_Navigation(t *testing.T) {
	m := newBrowseModel("sample.bin", sample(t))

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 2 {
		t.Fatalf("selected = %d, want 2", m.selected)
	}
	if got := m.current().path; got != "points[0]" {
		t.Errorf("current = %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1", m.selected)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if m.state != stateFilter {
		t.Fatal("slash did not open the filter")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("raw")})
	if len(m.visible) != 1 || m.visible[0].path != "raw" {
		t.Errorf("visible = %+v", m.visible)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateBrowse || len(m.visible) != 9 {
		t.Errorf("esc: state = %d, visible = %d", m.state, len(m.visible))
	}
}

func TestWrite_UnknownOutput(t *testing.T) {
	if err := write("xml", sample(t)); err == nil {
		t.Error("write(xml) succeeded")
	}
}

func TestResolveFormat(t *testing.T) {
	f, err := resolveFormat(options{format: "zip"})
	if err != nil || f.Name() != "zip" {
		t.Errorf("resolveFormat(zip) = %v, %v", f, err)
	}
	if _, err := resolveFormat(options{format: "bmp"}); err == nil {
		t.Error("resolveFormat(bmp) succeeded")
	}
}
