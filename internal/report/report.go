// Package report collects per-item deploy outcomes and renders a terminal
// summary. Structured logs carry the detail; the report is the operator-facing
// recap printed after a run.
package report

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Status is the outcome of a single deployed item.
type Status string

const (
	// StatusOK marks a successful deploy.
	StatusOK Status = "ok"
	// StatusFailed marks a failed deploy.
	StatusFailed Status = "failed"
)

// Item is the outcome of one deployed piece of content or configuration.
type Item struct {
	// Kind is what was deployed: "look", "dashboard", "connection", "export".
	Kind string
	// Name identifies the item (file path or connection name).
	Name string
	// Target is where it went (folder ID or environment name).
	Target string
	// Status is the outcome.
	Status Status
	// Err holds the failure message when Status is StatusFailed.
	Err string
	// Duration is how long the item took.
	Duration time.Duration
}

// Report accumulates item outcomes across concurrent workers.
type Report struct {
	mu    sync.Mutex
	title string
	items []Item
	start time.Time
}

// New creates a report with the given title.
func New(title string) *Report {
	return &Report{
		title: title,
		start: time.Now(),
	}
}

// Success records a successful item.
func (r *Report) Success(kind, name, target string, d time.Duration) {
	r.add(Item{Kind: kind, Name: name, Target: target, Status: StatusOK, Duration: d})
}

// Failure records a failed item.
func (r *Report) Failure(kind, name, target string, err error, d time.Duration) {
	item := Item{Kind: kind, Name: name, Target: target, Status: StatusFailed, Duration: d}
	if err != nil {
		item.Err = err.Error()
	}
	r.add(item)
}

func (r *Report) add(item Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

// Items returns a copy of the recorded items.
func (r *Report) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Counts returns the number of successful and failed items.
func (r *Report) Counts() (ok, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// HasFailures reports whether any item failed.
func (r *Report) HasFailures() bool {
	_, failed := r.Counts()
	return failed > 0
}

// Rendering styles.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(6)
)

// Render returns the human-readable summary.
func (r *Report) Render() string {
	r.mu.Lock()
	items := make([]Item, len(r.items))
	copy(items, r.items)
	title := r.title
	elapsed := time.Since(r.start)
	r.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	if len(items) == 0 {
		sb.WriteString(mutedStyle.Render("  nothing to deploy"))
		sb.WriteString("\n")
		return sb.String()
	}

	var ok, failed int
	for _, item := range items {
		marker := okStyle.Render("  ✓ ")
		if item.Status == StatusFailed {
			marker = failStyle.Render("  ✗ ")
			failed++
		} else {
			ok++
		}

		line := fmt.Sprintf("%s%s %s", marker, item.Kind, item.Name)
		if item.Target != "" {
			line += mutedStyle.Render(fmt.Sprintf(" -> %s", item.Target))
		}
		if item.Duration > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" (%s)", item.Duration.Round(time.Millisecond)))
		}
		sb.WriteString(line)
		sb.WriteString("\n")

		if item.Err != "" {
			sb.WriteString(detailStyle.Render(item.Err))
			sb.WriteString("\n")
		}
	}

	summary := fmt.Sprintf("  %d succeeded, %d failed in %s", ok, failed, elapsed.Round(time.Millisecond))
	if failed > 0 {
		sb.WriteString(failStyle.Render(summary))
	} else {
		sb.WriteString(okStyle.Render(summary))
	}
	sb.WriteString("\n")

	return sb.String()
}
