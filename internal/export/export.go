package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openriskhq/decisionguide/internal/engine"
	"github.com/openriskhq/decisionguide/internal/scoring"
)

// Report is a finished assessment ready for serialization. Risk is nil when
// the tree has no scoring configuration.
type Report struct {
	TreeTitle   string
	GeneratedAt time.Time
	Result      engine.Result
	Risk        *scoring.Assessment
}

// Formatter serializes a Report into one output format.
type Formatter interface {
	Format(r Report) ([]byte, error)
	ContentType() string
	Ext() string
}

// ForFormat returns the formatter for a format name.
func ForFormat(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "json":
		return jsonFormatter{}, nil
	case "csv":
		return csvFormatter{}, nil
	case "txt", "text":
		return textFormatter{}, nil
	case "md", "markdown":
		return markdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", name)
	}
}

type jsonFormatter struct{}

func (jsonFormatter) ContentType() string { return "application/json" }
func (jsonFormatter) Ext() string         { return "json" }

func (jsonFormatter) Format(r Report) ([]byte, error) {
	doc := map[string]any{
		"tree":         r.TreeTitle,
		"generated_at": r.GeneratedAt.Format(time.RFC3339),
		"decision":     r.Result.Decision,
		"explanation":  r.Result.Explanation,
		"path":         r.Result.Path,
	}
	if r.Risk != nil {
		doc["risk"] = r.Risk
	}
	return json.MarshalIndent(doc, "", "  ")
}

type csvFormatter struct{}

func (csvFormatter) ContentType() string { return "text/csv" }
func (csvFormatter) Ext() string         { return "csv" }

func (csvFormatter) Format(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"field", "value"},
		{"tree", r.TreeTitle},
		{"generated_at", r.GeneratedAt.Format(time.RFC3339)},
		{"decision", r.Result.Decision},
		{"explanation", r.Result.Explanation},
	}
	if r.Risk != nil {
		records = append(records,
			[]string{"risk_score", strconv.Itoa(r.Risk.Score)},
			[]string{"risk_level", r.Risk.Level},
		)
	}
	for i, step := range r.Result.Path {
		records = append(records, []string{fmt.Sprintf("step_%d", i+1), step})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type textFormatter struct{}

func (textFormatter) ContentType() string { return "text/plain; charset=utf-8" }
func (textFormatter) Ext() string         { return "txt" }

func (textFormatter) Format(r Report) ([]byte, error) {
	var b strings.Builder
	b.WriteString(r.TreeTitle + "\n")
	b.WriteString(strings.Repeat("=", len(r.TreeTitle)) + "\n\n")
	b.WriteString("Generated: " + r.GeneratedAt.Format(time.RFC3339) + "\n\n")
	b.WriteString("Decision: " + r.Result.Decision + "\n")
	if r.Result.Explanation != "" {
		b.WriteString("\n" + r.Result.Explanation + "\n")
	}
	if r.Risk != nil {
		fmt.Fprintf(&b, "\nRisk score: %d/100 (%s)\n", r.Risk.Score, strings.ToUpper(r.Risk.Level))
	}
	b.WriteString("\nDecision path:\n")
	for i, step := range r.Result.Path {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
	}
	return []byte(b.String()), nil
}

type markdownFormatter struct{}

func (markdownFormatter) ContentType() string { return "text/markdown; charset=utf-8" }
func (markdownFormatter) Ext() string         { return "md" }

func (markdownFormatter) Format(r Report) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.TreeTitle)
	fmt.Fprintf(&b, "*Generated %s*\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "## Final Decision\n\n**%s**\n", r.Result.Decision)
	if r.Result.Explanation != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Result.Explanation)
	}

	if r.Risk != nil {
		b.WriteString("\n## Risk Assessment\n\n")
		fmt.Fprintf(&b, "- **Score**: %d/100\n", r.Risk.Score)
		fmt.Fprintf(&b, "- **Level**: %s\n", strings.ToUpper(r.Risk.Level))
		fmt.Fprintf(&b, "- **Priority**: %s\n", r.Risk.Recommendation.Priority)
		fmt.Fprintf(&b, "- **Action**: %s\n", r.Risk.Recommendation.Action)
		fmt.Fprintf(&b, "- **Timeline**: %s\n", r.Risk.Recommendation.Timeline)
		fmt.Fprintf(&b, "- **Escalation**: %s\n", r.Risk.Recommendation.Escalation)

		if len(r.Risk.Breakdown) > 0 {
			b.WriteString("\n### Score Breakdown\n\n")
			b.WriteString("| Question | Answer | Weight | Impact |\n")
			b.WriteString("|---|---|---|---|\n")
			for _, entry := range r.Risk.Breakdown {
				fmt.Fprintf(&b, "| %s | %s | %+d | %s |\n",
					entry.Question, entry.Answer, entry.RiskWeight, entry.Impact)
			}
		}
	}

	b.WriteString("\n## Decision Path\n\n")
	for i, step := range r.Result.Path {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return []byte(b.String()), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename builds a download filename like "Vendor_Risk_Tiering_20260115.csv".
func Filename(title, ext string, t time.Time) string {
	base := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(title), "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = "assessment"
	}
	return fmt.Sprintf("%s_%s.%s", base, t.Format("20060102"), ext)
}
