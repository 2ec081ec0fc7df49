// Package report renders score reports for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/build-flow-labs/apiscore/scoring"
)

// Formats accepted by Write.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Write renders r in the named format. uri identifies the scored document
// in SARIF output and is ignored otherwise.
func Write(w io.Writer, format string, r *scoring.Report, uri string) error {
	switch format {
	case FormatText, "":
		return Text(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatSARIF:
		return SARIF(w, r, uri)
	}
	return fmt.Errorf("unknown format %q (want text, json or sarif)", format)
}

// Text writes a detailed, human readable view of the report.
func Text(out io.Writer, r *scoring.Report) error {
	title := r.Title
	if title == "" {
		title = "untitled"
	}
	if r.Version != "" {
		title += " " + r.Version
	}
	fmt.Fprintf(out, "API SCORE: %s  [%s] %d/100\n", title, scoring.Grade(r.Score), r.Score)
	fmt.Fprintln(out, strings.Repeat("─", 60))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range r.Categories {
		fmt.Fprintf(w, "  %s\t[%s] %d/100\n", c.Name, scoring.Grade(c.Score), c.Score)
		if err := w.Flush(); err != nil {
			return err
		}
		for _, issue := range c.Issues {
			fmt.Fprintf(out, "    - [%s] %s: %s\n", issue.Severity, issue.Code, issue.Message)
		}
	}
	return w.Flush()
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, r *scoring.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

const (
	toolName = "apiscore"
	toolURI  = "https://github.com/build-flow-labs/apiscore"
)

// SARIF writes every issue of the report as a SARIF 2.1.0 result. Each
// result carries the category key and the JSON pointer of the offending
// node as properties.
func SARIF(w io.Writer, r *scoring.Report, uri string) error {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	for _, c := range r.Categories {
		for _, issue := range c.Issues {
			rule := run.AddRule(issue.Code).WithDescription(c.Name)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(issue.Message)).
				WithLevel(sarifLevel(issue.Severity))
			if uri != "" {
				result.WithLocations([]*sarif.Location{
					sarif.NewLocation().WithPhysicalLocation(
						sarif.NewPhysicalLocation().
							WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)),
					),
				})
			}
			result.Properties = sarif.Properties{
				"category": c.Key,
				"pointer":  issue.Location,
			}
			run.AddResult(result)
		}
	}
	log.AddRun(run)

	return log.PrettyWrite(w)
}

func sarifLevel(severity string) string {
	switch severity {
	case "Error":
		return "error"
	case "Warning":
		return "warning"
	case "Information", "Hint":
		return "note"
	}
	return "none"
}
