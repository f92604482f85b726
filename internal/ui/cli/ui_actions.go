package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	// While a filter is being typed every key belongs to the list.
	if m.activeList().SettingFilter() {
		return m.updateActiveList(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.mode == panelDeclarations {
			m.mode = panelViolations
		} else {
			m.mode = panelDeclarations
		}
		return m, nil
	case "t":
		m.showTrend = !m.showTrend
		return m, nil
	case "o":
		selected, ok := m.activeList().SelectedItem().(item)
		if !ok || selected.target.file == "" {
			m.editorStatus = statusStyle.Render("No source target available.")
			return m, nil
		}
		return m, openEditorCmd(selected.target)
	}

	return m.updateActiveList(msg)
}

func (m model) activeList() *list.Model {
	if m.mode == panelViolations {
		return &m.violationList
	}
	return &m.declList
}

func (m model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.mode == panelViolations {
		m.violationList, cmd = m.violationList.Update(msg)
	} else {
		m.declList, cmd = m.declList.Update(msg)
	}
	return m, cmd
}

type sourceTarget struct {
	file string
	line int
}

func editorCommand(target sourceTarget) *exec.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	args := []string{target.file}
	if strings.Contains(editor, "vim") || strings.Contains(editor, "nvim") || strings.HasSuffix(editor, "vi") {
		args = []string{fmt.Sprintf("+%d", target.line), target.file}
	}
	return exec.Command(editor, args...)
}

func openEditorCmd(target sourceTarget) tea.Cmd {
	label := fmt.Sprintf("%s:%d", target.file, target.line)
	return tea.ExecProcess(editorCommand(target), func(err error) tea.Msg {
		return editorResultMsg{target: label, err: err}
	})
}
