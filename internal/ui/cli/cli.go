package cli

import (
	"flag"
	"io"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type cliOptions struct {
	configPath     string
	style          string
	threshold      int
	checker        string
	format         string
	output         string
	filter         string
	injectMarkdown string
	ui             bool
	watch          bool
	history        bool
	trend          bool
	since          string
	metricsAddr    string
	workers        int
	verbose        bool
	version        bool
	args           []string

	// set records which flags were given explicitly, so only those
	// override the configuration file.
	set map[string]bool
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("doccov", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to pyproject.toml (default: discovered from the analyzed paths)")
	fs.StringVar(&opts.style, "style", "", "Docstring style: numpy, google or reST")
	fs.IntVar(&opts.threshold, "threshold", 0, "Minimum coverage percentage (0-100)")
	fs.StringVar(&opts.checker, "checker", "", "Style checker: builtin, pydocstyle or none")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, markdown, json, tsv or sarif")
	fs.StringVar(&opts.output, "output", "", "Write the report to this file instead of stdout")
	fs.StringVar(&opts.filter, "filter", "", "Only list declarations whose name contains this text")
	fs.StringVar(&opts.injectMarkdown, "inject-markdown", "", "Rewrite the doccov:coverage marker block of this markdown file")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.BoolVar(&opts.watch, "watch", false, "Re-analyze files as they change")
	fs.BoolVar(&opts.history, "history", false, "Record coverage snapshots in the history database")
	fs.BoolVar(&opts.trend, "trend", false, "Print the coverage trend from history and exit")
	fs.StringVar(&opts.since, "since", "", "Only include history at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address")
	fs.IntVar(&opts.workers, "workers", 0, "Number of files analyzed concurrently")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	opts.args = fs.Args()
	return opts, nil
}
