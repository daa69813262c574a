package main

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/dukt/runtime"
)

// maxEntries bounds the transcript kept on screen.
const maxEntries = 200

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	printStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entry struct {
	input   string
	printed string
	result  string
	err     error
}

type interactiveModel struct {
	rt      *runtime.Runtime
	out     *bytes.Buffer
	input   textinput.Model
	entries []entry
	history []string
	histIdx int
	busy    bool
}

type evalResultMsg struct {
	entry entry
}

func newInteractiveModel(rt *runtime.Runtime, out *bytes.Buffer) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "expression"
	ti.Focus()
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 10 {
		ti.Width = w - 4
	} else {
		ti.Width = 76
	}
	return &interactiveModel{
		rt:    rt,
		out:   out,
		input: ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "ctrl+l":
			m.entries = nil
			return m, nil

		case "up":
			if len(m.history) > 0 && m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			if src == "" || m.busy {
				return m, nil
			}
			m.history = append(m.history, src)
			m.histIdx = len(m.history)
			m.input.SetValue("")
			m.busy = true
			return m, m.evaluate(src)
		}

	case evalResultMsg:
		m.busy = false
		m.entries = append(m.entries, msg.entry)
		if len(m.entries) > maxEntries {
			m.entries = m.entries[len(m.entries)-maxEntries:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// evaluate runs src off the UI loop. busy keeps evaluations serialized.
func (m *interactiveModel) evaluate(src string) tea.Cmd {
	return func() tea.Msg {
		result, err := evalLine(context.Background(), m.rt, src)
		printed := strings.TrimRight(m.out.String(), "\n")
		m.out.Reset()
		return evalResultMsg{entry: entry{
			input:   src,
			printed: printed,
			result:  result,
			err:     err,
		}}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("dukt " + version))
	b.WriteString("\n\n")

	for _, e := range m.entries {
		b.WriteString(inputStyle.Render("> " + e.input))
		b.WriteString("\n")
		if e.printed != "" {
			b.WriteString(printStyle.Render(e.printed))
			b.WriteString("\n")
		}
		if e.err != nil {
			b.WriteString(errorStyle.Render(e.err.Error()))
		} else {
			b.WriteString(e.result)
		}
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.busy {
		b.WriteString(helpStyle.Render("running..."))
	} else {
		b.WriteString(helpStyle.Render("enter eval • ↑/↓ history • ctrl+l clear • ctrl+c quit"))
	}
	return b.String()
}

func runInteractive(cfg *runtime.Config, files []string) error {
	out := &bytes.Buffer{}
	rt, err := newRuntime(cfg, out, files)
	if err != nil {
		return err
	}
	defer rt.Close()

	m := newInteractiveModel(rt, out)
	for _, f := range files {
		if err := rt.RunFile(context.Background(), f); err != nil {
			return err
		}
	}
	if out.Len() > 0 {
		m.entries = append(m.entries, entry{
			input:   "load " + strings.Join(files, " "),
			printed: strings.TrimRight(out.String(), "\n"),
			result:  specialColor("undefined"),
		})
		out.Reset()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
