package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/i64/duckparse/parse"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxBytes caps how much of a byte field is shown inline.
const maxBytes = 24

type row struct {
	path  string
	label string
	value string
	depth int
	group bool
}

// flatten lists every decoded value of inst depth first.
func flatten(inst *parse.Instance) []row {
	var rows []row
	var walk func(path, label string, v any, depth int)
	walk = func(path, label string, v any, depth int) {
		switch x := v.(type) {
		case *parse.Instance:
			rows = append(rows, row{path: path, label: label, value: x.Name(), depth: depth, group: true})
			for name, fv := range x.All() {
				walk(join(path, name), name, fv, depth+1)
			}
		case []any:
			rows = append(rows, row{path: path, label: label, value: fmt.Sprintf("%d items", len(x)), depth: depth, group: true})
			for i, e := range x {
				seg := "[" + strconv.Itoa(i) + "]"
				walk(path+seg, seg, e, depth+1)
			}
		default:
			rows = append(rows, row{path: path, label: label, value: scalar(v), depth: depth})
		}
	}
	for name, v := range inst.All() {
		walk(name, name, v, 0)
	}
	return rows
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func scalar(v any) string {
	switch x := v.(type) {
	case []byte:
		if len(x) > maxBytes {
			return fmt.Sprintf("%x… (%d bytes)", x[:maxBytes], len(x))
		}
		return fmt.Sprintf("%x", x)
	case string:
		return strconv.Quote(x)
	case parse.EnumValue:
		return x.String()
	}
	return fmt.Sprint(v)
}

// filterRows keeps rows whose path contains query.
func filterRows(rows []row, query string) []row {
	if query == "" {
		return rows
	}
	var out []row
	for _, r := range rows {
		if strings.Contains(r.path, query) {
			out = append(out, r)
		}
	}
	return out
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
)

type browseModel struct {
	inst     *parse.Instance
	filename string
	rows     []row
	visible  []row
	filter   textinput.Model
	selected int
	offset   int
	height   int
	state    modelState
}

func newBrowseModel(filename string, inst *parse.Instance) *browseModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "path"
	ti.Width = 40

	rows := flatten(inst)
	return &browseModel{
		inst:     inst,
		filename: filename,
		rows:     rows,
		visible:  rows,
		filter:   ti,
		height:   20,
		state:    stateBrowse,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 1)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				m.filter.Blur()
				m.state = stateBrowse
				return m, nil
			case "esc":
				m.filter.Blur()
				m.filter.SetValue("")
				m.apply()
				m.state = stateBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.apply()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			m.state = stateFilter
			return m, m.filter.Focus()

		case "esc":
			m.filter.SetValue("")
			m.apply()
		}
		m.scroll()
	}

	return m, nil
}

func (m *browseModel) apply() {
	m.visible = filterRows(m.rows, m.filter.Value())
	m.selected = 0
	m.offset = 0
}

func (m *browseModel) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("duckparse"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.inst.Name()))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.visible))
	for i := m.offset; i < end; i++ {
		r := m.visible[i]
		line := strings.Repeat("  ", r.depth) + r.label + ": "
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line + r.value))
		} else if r.group {
			b.WriteString("  " + fieldStyle.Render(line) + typeStyle.Render(r.value))
		} else {
			b.WriteString("  " + fieldStyle.Render(line) + valueStyle.Render(r.value))
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("  no matching fields"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter keep filter • esc clear"))
	} else {
		if sel := m.current(); sel != nil {
			b.WriteString(helpStyle.Render(sel.path))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ move • / filter • esc clear • q quit"))
	}

	return b.String()
}

func (m *browseModel) current() *row {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return nil
	}
	return &m.visible[m.selected]
}

func runInteractive(filename string, inst *parse.Instance) error {
	p := tea.NewProgram(newBrowseModel(filename, inst), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
