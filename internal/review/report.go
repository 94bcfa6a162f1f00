package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sota-codex/codex/internal/lint"
)

// Status is the outcome of one checklist item.
type Status string

const (
	StatusPass   Status = "pass"
	StatusFail   Status = "fail"
	StatusManual Status = "manual"
)

// ItemResult is one evaluated checklist item.
type ItemResult struct {
	Text     string         `json:"text"`
	Rule     string         `json:"rule,omitempty"`
	Status   Status         `json:"status"`
	Findings []lint.Finding `json:"findings,omitempty"`
}

// SectionResult groups evaluated items under their heading.
type SectionResult struct {
	Title string       `json:"title"`
	Items []ItemResult `json:"items"`
}

// Report is the outcome of running a checklist against lint findings.
type Report struct {
	Checklist string          `json:"checklist"`
	Target    string          `json:"target,omitempty"`
	Sections  []SectionResult `json:"sections"`
	Passed    int             `json:"passed"`
	Failed    int             `json:"failed"`
	Manual    int             `json:"manual"`
}

// Evaluate checks every tagged item against the findings. Target narrows
// findings to one path; empty target reviews the whole corpus. Untagged
// items stay manual.
func Evaluate(checklist Checklist, target string, findings []lint.Finding) Report {
	report := Report{Checklist: checklist.Name, Target: target}
	byRule := map[string][]lint.Finding{}
	for _, finding := range findings {
		if target != "" && finding.Path != target {
			continue
		}
		byRule[finding.Rule] = append(byRule[finding.Rule], finding)
	}
	for _, section := range checklist.Sections {
		result := SectionResult{Title: section.Title}
		for _, item := range section.Items {
			evaluated := ItemResult{Text: item.Text, Rule: item.Rule, Status: StatusManual}
			if item.Rule != "" {
				if hits := byRule[item.Rule]; len(hits) > 0 {
					evaluated.Status = StatusFail
					evaluated.Findings = hits
				} else {
					evaluated.Status = StatusPass
				}
			}
			switch evaluated.Status {
			case StatusPass:
				report.Passed++
			case StatusFail:
				report.Failed++
			default:
				report.Manual++
			}
			result.Items = append(result.Items, evaluated)
		}
		report.Sections = append(report.Sections, result)
	}
	return report
}

// Clean reports whether no tagged item failed.
func (r Report) Clean() bool {
	return r.Failed == 0
}

// Markdown renders the report as a reviewer-facing checklist.
func (r Report) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Review: %s\n", r.Checklist)
	if r.Target != "" {
		fmt.Fprintf(&sb, "\nTarget: %s\n", r.Target)
	}
	for _, section := range r.Sections {
		fmt.Fprintf(&sb, "\n## %s\n\n", section.Title)
		for _, item := range section.Items {
			fmt.Fprintf(&sb, "- %s %s\n", marker(item.Status), item.Text)
			for _, finding := range item.Findings {
				fmt.Fprintf(&sb, "  - %s:%d %s\n", finding.Path, finding.Line, finding.Message)
			}
		}
	}
	fmt.Fprintf(&sb, "\n%d passed, %d failed, %d manual\n", r.Passed, r.Failed, r.Manual)
	return sb.String()
}

// JSON renders the report for machine consumers.
func (r Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("review: encode report: %w", err)
	}
	return data, nil
}

func marker(status Status) string {
	switch status {
	case StatusPass:
		return "[x]"
	case StatusFail:
		return "[!]"
	default:
		return "[ ]"
	}
}
