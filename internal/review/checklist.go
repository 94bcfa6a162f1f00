// Package review turns checklist documents into structured review reports.
// Items tagged with lint:<rule-id> are evaluated automatically against lint
// findings; everything else stays a manual judgment call.
package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sota-codex/codex/internal/document"
)

var (
	headingPattern = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	itemPattern    = regexp.MustCompile(`^[-*]\s+\[[ xX]\]\s+(.+?)\s*$`)
	ruleTagPattern = regexp.MustCompile(`\s*lint:([a-z0-9-]+)\s*$`)
)

// Item is one checklist entry.
type Item struct {
	Text string
	// Rule is the lint rule ID from a lint: tag, empty for manual items.
	Rule string
}

// Section groups items under a ## heading.
type Section struct {
	Title string
	Items []Item
}

// Checklist is a parsed review checklist.
type Checklist struct {
	Name     string
	Source   string
	Sections []Section
}

// Items returns every item across sections.
func (c Checklist) Items() []Item {
	var out []Item
	for _, section := range c.Sections {
		out = append(out, section.Items...)
	}
	return out
}

// ParseChecklist extracts sections and items from a checklist document.
// Items before the first heading land in an unnamed "General" section.
func ParseChecklist(doc document.Document) (Checklist, error) {
	if err := doc.Meta.ValidateFor(document.KindChecklist); err != nil {
		return Checklist{}, err
	}
	checklist := Checklist{
		Name:   doc.Meta.Normalized().Name,
		Source: doc.Path,
	}
	current := Section{Title: "General"}
	flush := func() {
		if len(current.Items) > 0 {
			checklist.Sections = append(checklist.Sections, current)
		}
	}
	for _, line := range strings.Split(string(doc.Body), "\n") {
		if match := headingPattern.FindStringSubmatch(line); match != nil {
			flush()
			current = Section{Title: match[1]}
			continue
		}
		match := itemPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		text := match[1]
		item := Item{Text: text}
		if tag := ruleTagPattern.FindStringSubmatch(text); tag != nil {
			item.Rule = tag[1]
			item.Text = strings.TrimSpace(ruleTagPattern.ReplaceAllString(text, ""))
		}
		current.Items = append(current.Items, item)
	}
	flush()
	if len(checklist.Sections) == 0 {
		return Checklist{}, fmt.Errorf("review: checklist %s has no items", checklist.Name)
	}
	return checklist, nil
}
