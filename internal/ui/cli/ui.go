package cli

import (
	"fmt"
	"path/filepath"
	"time"

	coreapp "doccov/internal/core/app"
	"doccov/internal/data/history"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	passedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	target      sourceTarget
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + " " + i.desc }

type panelMode int

const (
	panelDeclarations panelMode = iota
	panelViolations
)

type model struct {
	declList      list.Model
	violationList list.Model
	mode          panelMode
	results       *resultSet
	summary       coreapp.Summary
	trendReport   *history.TrendReport
	showTrend     bool
	watching      bool
	lastUpdate    time.Time
	editorStatus  string
}

// resultsMsg replaces every result; resultMsg updates one file.
type resultsMsg struct {
	results []coreapp.Result
}

type resultMsg struct {
	result coreapp.Result
}

type editorResultMsg struct {
	target string
	err    error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.declList.SetSize(width, height)
		m.violationList.SetSize(width, height)
	case resultsMsg:
		m.results = newResultSet(msg.results)
		return m.refresh(), nil
	case resultMsg:
		m.results.Put(msg.result)
		return m.refresh(), nil
	case editorResultMsg:
		if msg.err != nil {
			m.editorStatus = statusStyle.Render(fmt.Sprintf("Editor failed: %v", msg.err))
		} else {
			m.editorStatus = statusStyle.Render(fmt.Sprintf("Opened source: %s", msg.target))
		}
	}

	var cmd tea.Cmd
	if m.mode == panelDeclarations {
		m.declList, cmd = m.declList.Update(msg)
	} else {
		m.violationList, cmd = m.violationList.Update(msg)
	}
	return m, cmd
}

// refresh rebuilds both panels from the current result set.
func (m model) refresh() model {
	results := m.results.Results()
	m.summary = coreapp.Summarize(results)
	m.lastUpdate = time.Now()

	decls := []list.Item{}
	violations := []list.Item{}
	for _, r := range results {
		path := filepath.ToSlash(r.Request.Path)
		if r.ParseErr != nil {
			decls = append(decls, item{
				title:  "Cannot analyze " + path,
				desc:   r.ParseErr.Error(),
				target: sourceTarget{file: r.Request.Path, line: 1},
			})
		}
		for _, d := range r.Declarations() {
			status := "Undocumented"
			if d.Documented {
				status = "Documented"
			}
			decls = append(decls, item{
				title:  d.QualifiedName,
				desc:   fmt.Sprintf("%s | %s:%d | %s", d.Kind, path, d.Location.Line, status),
				target: sourceTarget{file: r.Request.Path, line: d.Location.Line},
			})
		}

		if r.ViolationsErr != nil {
			violations = append(violations, item{
				title:  "Style check failed for " + path,
				desc:   r.ViolationsErr.Error(),
				target: sourceTarget{file: r.Request.Path, line: 1},
			})
		}
		for _, v := range r.Violations {
			violations = append(violations, item{
				title:  fmt.Sprintf("%s %s:%d", v.Code, path, v.Line),
				desc:   v.Message,
				target: sourceTarget{file: r.Request.Path, line: v.Line},
			})
		}
	}
	m.declList.SetItems(decls)
	m.violationList.SetItems(violations)
	return m
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files",
		m.lastUpdate.Format("15:04:05"), m.summary.Files))
	if m.watching {
		status += statusStyle.Render(" | watching")
	}

	verdict := passedStyle.Render("PASSED")
	if !m.summary.AllPassed {
		verdict = failedStyle.Render("FAILED")
	}
	metrics := fmt.Sprintf("Total Items: %d | Documentation Coverage: %.2f%% | Compliance Status: %s",
		m.summary.Total, m.summary.Percentage, verdict)
	if m.summary.ParseFailures > 0 {
		metrics += " | " + warningStyle.Render(fmt.Sprintf("%d unparseable", m.summary.ParseFailures))
	}

	header := fmt.Sprintf("%s\n%s\n%s\n", titleStyle("Docstring Coverage"), status, metrics)
	body := m.declList.View()
	if m.mode == panelViolations {
		body = m.violationList.View()
	}
	if m.showTrend {
		body += "\n\n" + renderTrendOverlay(m.trendReport)
	}
	if m.editorStatus != "" {
		body += "\n\n" + m.editorStatus
	}

	return docStyle.Render(header + "\n" + renderHelp(m) + "\n\n" + body)
}

func initialModel(trendReport *history.TrendReport, watching bool) model {
	declList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	declList.Title = "Declarations"
	declList.SetShowStatusBar(false)
	declList.SetFilteringEnabled(true)

	violationList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	violationList.Title = "Style Violations"
	violationList.SetShowStatusBar(false)
	violationList.SetFilteringEnabled(true)

	return model{
		declList:      declList,
		violationList: violationList,
		mode:          panelDeclarations,
		results:       newResultSet(nil),
		summary:       coreapp.Summarize(nil),
		trendReport:   trendReport,
		watching:      watching,
		lastUpdate:    time.Now(),
	}
}
