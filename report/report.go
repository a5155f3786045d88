// Package report turns a finished run into what the user sees: the tool call
// summary, one section per platform and the combined ads.txt export.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"agentic_ad_copy/generator"
)

const (
	ExportFilename    = "ads.txt"
	ExportContentType = "text/plain"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// CallSummary describes how often the agent used the ad tool.
type CallSummary struct {
	Invoked bool     `json:"invoked"`
	Count   int      `json:"count"`
	Message string   `json:"message"`
	Lines   []string `json:"lines"`
}

// Summarize reports on the call log. The warning message is used only when the
// tool was never called.
func Summarize(calls []generator.CallRecord) CallSummary {
	if len(calls) == 0 {
		return CallSummary{
			Message: fmt.Sprintf("%s was NOT called! The agent did not use the tool.", generator.AdToolName),
		}
	}
	s := CallSummary{
		Invoked: true,
		Count:   len(calls),
		Message: fmt.Sprintf("%s was called %d times!", generator.AdToolName, len(calls)),
	}
	for _, c := range calls {
		s.Lines = append(s.Lines, fmt.Sprintf("%s(platform='%s') at %s", c.Function, c.Platform, c.Time))
	}
	return s
}

// Section is one platform's copy, ready for display.
type Section struct {
	Platform string
	Title    string
	Text     string
	HTML     template.HTML
}

// Sections renders each platform's copy in result order.
func Sections(results *generator.Results) ([]Section, error) {
	var out []Section
	for _, r := range results.Items() {
		html, err := mdToHTML(r.Text)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", r.Platform, err)
		}
		out = append(out, Section{
			Platform: r.Platform,
			Title:    r.Platform + " Ad Copy",
			Text:     r.Text,
			HTML:     template.HTML(html),
		})
	}
	return out, nil
}

// Export joins every platform's copy under a "--- platform ---" header.
func Export(results *generator.Results) string {
	blocks := make([]string, 0, results.Len())
	for _, r := range results.Items() {
		blocks = append(blocks, fmt.Sprintf("--- %s ---\n%s", r.Platform, r.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// Report bundles everything derived from one run.
type Report struct {
	RunID    string
	Summary  CallSummary
	Sections []Section
	Export   string
}

func Build(run *generator.Run) (*Report, error) {
	sections, err := Sections(run.Results)
	if err != nil {
		return nil, err
	}
	return &Report{
		RunID:    run.ID,
		Summary:  Summarize(run.Calls),
		Sections: sections,
		Export:   Export(run.Results),
	}, nil
}

// Raw HTML in model output is dropped; goldmark only passes it through with html.WithUnsafe.
func mdToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
