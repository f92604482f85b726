package formats

import (
	"encoding/json"
	"fmt"
	"sort"

	"doccov/internal/core/app"
	"doccov/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDUndocumented = "DOC001"
	ruleIDParseFailure = "DOC002"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// GenerateSARIF builds a SARIF v2.1.0 document. Undocumented declarations
// are DOC001, unparseable files DOC002, and style violations keep their
// checker code. File URIs are relative to opts.ProjectRoot.
func GenerateSARIF(results []app.Result, opts Options) ([]byte, error) {
	out := make([]sarifResult, 0)
	styleRules := make(map[string]string)
	var undocumented, parseFailures bool

	for _, r := range results {
		uri := relPath(opts.ProjectRoot, r.Request.Path)

		if r.ParseErr != nil {
			parseFailures = true
			out = append(out, sarifResult{
				RuleID:    ruleIDParseFailure,
				Level:     "error",
				Message:   sarifMessage{Text: "Cannot analyze docstring coverage: " + r.ParseErr.Error()},
				Locations: []sarifLocation{location(uri, 0, 0)},
			})
		}

		if r.Report != nil {
			for _, d := range r.Report.Declarations {
				if d.Documented {
					continue
				}
				undocumented = true
				level := "note"
				if !r.Compliance.Passed {
					level = "warning"
				}
				out = append(out, sarifResult{
					RuleID:    ruleIDUndocumented,
					Level:     level,
					Message:   sarifMessage{Text: fmt.Sprintf("%s %q has no docstring", kindLabel(d), d.QualifiedName)},
					Locations: []sarifLocation{location(uri, d.Location.Line, d.Location.Column)},
				})
			}
		}

		for _, v := range r.Violations {
			if _, ok := styleRules[v.Code]; !ok {
				styleRules[v.Code] = v.Message
			}
			text := v.Message
			if v.Definition != "" {
				text = fmt.Sprintf("%s (%s)", v.Message, v.Definition)
			}
			out = append(out, sarifResult{
				RuleID:    v.Code,
				Level:     "note",
				Message:   sarifMessage{Text: text},
				Locations: []sarifLocation{location(uri, v.Line, 0)},
			})
		}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "doccov",
						Version: nonEmpty(opts.Version, version.Version),
						Rules:   buildSARIFRules(undocumented, parseFailures, styleRules),
					},
				},
				Results: out,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

// buildSARIFRules returns only the rules referenced by results.
func buildSARIFRules(undocumented, parseFailures bool, styleRules map[string]string) []sarifRule {
	rules := make([]sarifRule, 0, 2+len(styleRules))
	if undocumented {
		rules = append(rules, sarifRule{
			ID:               ruleIDUndocumented,
			Name:             "MissingDocstring",
			ShortDescription: sarifMessage{Text: "A function or class has no docstring."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}
	if parseFailures {
		rules = append(rules, sarifRule{
			ID:               ruleIDParseFailure,
			Name:             "ParseFailure",
			ShortDescription: sarifMessage{Text: "The file could not be parsed, so coverage is unknown."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}

	codes := make([]string, 0, len(styleRules))
	for code := range styleRules {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		rules = append(rules, sarifRule{
			ID:               code,
			Name:             "DocstringStyle" + code,
			ShortDescription: sarifMessage{Text: styleRules[code]},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
		})
	}
	return rules
}

func location(uri string, line, column int) sarifLocation {
	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       uri,
				URIBaseID: "%SRCROOT%",
			},
		},
	}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{
			StartLine:   line,
			StartColumn: column,
		}
	}
	return loc
}
