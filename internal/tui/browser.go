// Copyright (c) 2025 Neomantra Corp

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nrbf-go/nrbf-go"
)

// Config holds the root decoded value the browser walks.
type Config struct {
	Root nrbf.Value
}

// Run starts the tree-browser program over config.Root until the user quits.
func Run(config Config) error {
	model := NewAppModel(config)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

///////////////////////////////////////////////////////////////////////////////

// row is one flattened, currently-visible line of the object graph.
type row struct {
	path       string // unique key within the tree, used for expand/collapse state
	depth      int
	label      string
	value      *nrbf.Value
	expandable bool
}

type AppModel struct {
	config Config

	expanded map[string]bool
	rows     []row
	cursor   int

	width, height int
	help          help.Model
	keyMap        AppKeyMap
}

func NewAppModel(config Config) AppModel {
	m := AppModel{
		config:   config,
		expanded: map[string]bool{"$": true},
		width:    80,
		height:   24,
		help:     help.New(),
		keyMap:   DefaultAppKeyMap(),
	}
	m.rebuild()
	return m
}

///////////////////////////////////////////////////////////////////////////////
// AppKeyMap

type AppKeyMap struct {
	Quit    key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
}

func DefaultAppKeyMap() AppKeyMap {
	return AppKeyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q", "esc"), key.WithHelp("q", "quit")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
	}
}

func (m *AppKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Quit, m.Up, m.Down, m.Toggle}}
}

func (m AppKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Quit, m.Up, m.Down, m.Toggle}
}

///////////////////////////////////////////////////////////////////////////////
// BubbleTea interface

func (m AppModel) Init() tea.Cmd { return nil }

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keyMap.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keyMap.Toggle):
			if m.cursor < len(m.rows) {
				r := m.rows[m.cursor]
				if r.expandable {
					m.expanded[r.path] = !m.expanded[r.path]
					m.rebuild()
				}
			}
		}
	}
	return m, nil
}

func (m AppModel) View() string {
	var b strings.Builder
	b.WriteString(classStyle.Render(" nrbf-go object graph ") + "\n")

	top, bottom := 0, len(m.rows)
	visibleRows := m.height - 3
	if visibleRows > 0 && len(m.rows) > visibleRows {
		top = m.cursor - visibleRows/2
		if top < 0 {
			top = 0
		}
		bottom = top + visibleRows
		if bottom > len(m.rows) {
			bottom = len(m.rows)
			top = bottom - visibleRows
			if top < 0 {
				top = 0
			}
		}
	}

	for i := top; i < bottom; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(m.help.View(&m.keyMap))
	return b.String()
}

func (m AppModel) renderRow(r row) string {
	indent := strings.Repeat("  ", r.depth)
	arrow := " "
	if r.expandable {
		if m.expanded[r.path] {
			arrow = expandedArrow
		} else {
			arrow = collapsedArrow
		}
	}
	return fmt.Sprintf("%s%s %s", indent, arrow, r.label)
}

///////////////////////////////////////////////////////////////////////////////
// Tree flattening

func (m *AppModel) rebuild() {
	m.rows = nil
	m.appendNode("$", 0, "root", &m.config.Root)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *AppModel) appendNode(path string, depth int, label string, v *nrbf.Value) {
	summary, expandable := summarizeValue(v)
	m.rows = append(m.rows, row{path: path, depth: depth, label: label + " " + summary, value: v, expandable: expandable})
	if !expandable || !m.expanded[path] {
		return
	}
	switch v.Kind {
	case nrbf.KindObject:
		for _, name := range v.ObjectMembers {
			child := v.Object[name]
			m.appendNode(path+"."+name, depth+1, memberStyle.Render(name)+":", &child)
		}
	case nrbf.KindArray:
		for i := range v.Array {
			m.appendNode(fmt.Sprintf("%s[%d]", path, i), depth+1, fmt.Sprintf("[%d]:", i), &v.Array[i])
		}
	case nrbf.KindNdArray:
		for i := range v.Nd.Elements {
			m.appendNode(fmt.Sprintf("%s[%d]", path, i), depth+1, fmt.Sprintf("[%d]:", i), &v.Nd.Elements[i])
		}
	case nrbf.KindMap:
		for i := range v.MapEntries {
			m.appendNode(fmt.Sprintf("%s{%d}.k", path, i), depth+1, "key:", &v.MapEntries[i].Key)
			m.appendNode(fmt.Sprintf("%s{%d}.v", path, i), depth+1, "value:", &v.MapEntries[i].Value)
		}
	case nrbf.KindSet:
		for i := range v.SetElements {
			m.appendNode(fmt.Sprintf("%s<%d>", path, i), depth+1, fmt.Sprintf("<%d>:", i), &v.SetElements[i])
		}
	}
}

// summarizeValue renders a one-line label for v and reports whether it
// has children worth expanding into.
func summarizeValue(v *nrbf.Value) (string, bool) {
	switch v.Kind {
	case nrbf.KindNull:
		return scalarStyle.Render("null"), false
	case nrbf.KindObject:
		return classStyle.Render(v.ObjectClass) + fmt.Sprintf(" (%d members)", len(v.ObjectMembers)), len(v.ObjectMembers) > 0
	case nrbf.KindArray:
		if v.RawBytes != nil {
			return fmt.Sprintf("bytes[%s]", humanize.Bytes(uint64(len(v.RawBytes)))), false
		}
		return fmt.Sprintf("array[%d]", len(v.Array)), len(v.Array) > 0
	case nrbf.KindNdArray:
		return fmt.Sprintf("ndarray%v", v.Nd.Lengths), len(v.Nd.Elements) > 0
	case nrbf.KindMap:
		return fmt.Sprintf("map[%d]", len(v.MapEntries)), len(v.MapEntries) > 0
	case nrbf.KindSet:
		return fmt.Sprintf("set[%d]", len(v.SetElements)), len(v.SetElements) > 0
	case nrbf.KindString, nrbf.KindDecimal:
		return scalarStyle.Render(fmt.Sprintf("%q", v.Str)), false
	case nrbf.KindDateTime:
		return scalarStyle.Render(fmt.Sprintf("datetime(ticks=%d, kind=%d)", v.DateTime.Ticks, v.DateTime.Kind)), false
	default:
		return scalarStyle.Render(v.String()), false
	}
}
