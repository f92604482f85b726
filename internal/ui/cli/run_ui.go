package cli

import (
	"context"
	"errors"
	"log/slog"

	coreapp "doccov/internal/core/app"
	"doccov/internal/data/history"

	tea "github.com/charmbracelet/bubbletea"
)

// runUI shows results in the terminal UI, streaming watch updates into it
// when watch is set. It returns the summary of what was on screen at exit.
func runUI(
	ctx context.Context,
	svc *coreapp.Service,
	paths []string,
	results []coreapp.Result,
	trend *history.TrendReport,
	watch bool,
	options func() coreapp.Options,
) (coreapp.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, _ := initialModel(trend, watch).Update(resultsMsg{results: results})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if watch {
		go func() {
			err := svc.Watch(ctx, paths, options, func(r coreapp.Result) {
				p.Send(resultMsg{result: r})
			})
			if err != nil {
				slog.Error("failed to watch paths", "error", err)
			}
		}()
	}

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return coreapp.Summary{}, err
	}
	if state, ok := final.(model); ok {
		return state.summary, nil
	}
	return coreapp.Summarize(results), nil
}
