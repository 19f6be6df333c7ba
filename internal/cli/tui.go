package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/archlog/pkg/changelog"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCheckStyle    = lipgloss.NewStyle().Foreground(colorGreen)
)

// PackageListModel is the bubbletea model for choosing which upgradable
// packages to resolve. Every package starts checked.
type PackageListModel struct {
	Packages  []changelog.Package
	Checked   []bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewPackageListModel creates a picker over pkgs.
func NewPackageListModel(pkgs []changelog.Package) PackageListModel {
	checked := make([]bool, len(pkgs))
	for i := range checked {
		checked[i] = true
	}
	return PackageListModel{Packages: pkgs, Checked: checked, Height: 15}
}

func (m PackageListModel) Init() tea.Cmd {
	return nil
}

func (m PackageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Packages)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Packages) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := !m.allChecked()
			for i := range m.Checked {
				m.Checked[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PackageListModel) allChecked() bool {
	for _, c := range m.Checked {
		if !c {
			return false
		}
	}
	return true
}

// Selection returns the checked packages, or nil when the picker was
// aborted.
func (m PackageListModel) Selection() []changelog.Package {
	if !m.Confirmed {
		return nil
	}
	var out []changelog.Package
	for i, p := range m.Packages {
		if m.Checked[i] {
			out = append(out, p)
		}
	}
	return out
}

func (m PackageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Packages"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ resolve  q quit"))
	b.WriteString("\n\n")

	nameWidth := 0
	for _, p := range m.Packages {
		nameWidth = max(nameWidth, len(p.Name))
	}

	end := min(m.Offset+m.Height, len(m.Packages))
	for i := m.Offset; i < end; i++ {
		p := m.Packages[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = listCheckStyle.Render("[x]")
		}
		line := fmt.Sprintf("%-*s  %s", nameWidth, p.Name,
			listDimStyle.Render(p.CurrentVersion+" "+iconArrow+" "+p.NewVersion))

		switch {
		case i == m.Cursor:
			line = listSelectedStyle.Render(line)
		case !m.Checked[i]:
			line = listDimStyle.Render(line)
		default:
			line = listNormalStyle.Render(line)
		}
		b.WriteString(cursor + box + " " + line + "\n")
	}

	checked := 0
	for _, c := range m.Checked {
		if c {
			checked++
		}
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", checked, len(m.Packages))))
	return b.String()
}

// selectPackages runs the picker on the terminal.
func selectPackages(pkgs []changelog.Package) ([]changelog.Package, error) {
	final, err := tea.NewProgram(NewPackageListModel(pkgs)).Run()
	if err != nil {
		return nil, fmt.Errorf("package picker: %w", err)
	}
	return final.(PackageListModel).Selection(), nil
}
