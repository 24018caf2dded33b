// Package milestone round-trips a session's milestones.md between its
// checkbox markdown form and structured progress data.
package milestone

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tutorkit/tutorkit/pkg/types"
)

var (
	titlePattern = regexp.MustCompile(`^#\s*里程碑:\s*(.+)$`)
	itemPattern  = regexp.MustCompile(`^-\s*\[([ xX])\]\s*(.+)$`)
)

// Parse extracts the title (first matching heading only) and checkbox items
// in order. List lines without a checkbox are skipped.
func Parse(md string) types.Milestones {
	m := types.Milestones{Items: []types.MilestoneItem{}}

	for _, line := range strings.Split(md, "\n") {
		if m.Title == "" {
			if tm := titlePattern.FindStringSubmatch(line); tm != nil {
				m.Title = strings.TrimSpace(tm[1])
				continue
			}
		}
		if im := itemPattern.FindStringSubmatch(line); im != nil {
			m.Items = append(m.Items, types.MilestoneItem{
				Name:      strings.TrimSpace(im[2]),
				Completed: strings.EqualFold(im[1], "x"),
			})
		}
	}

	return m
}

// Serialize renders milestones back to markdown: the title heading, then a
// blank line and one checkbox line per item when any items exist.
// Parse(Serialize(m)) == m for any m whose names contain no newline.
func Serialize(m types.Milestones) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 里程碑: %s\n", m.Title)

	if len(m.Items) > 0 {
		b.WriteString("\n")
		for _, item := range m.Items {
			mark := " "
			if item.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, item.Name)
		}
	}

	return b.String()
}
