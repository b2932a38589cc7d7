// Package docs generates the Markdown derived from the skill set: a skills
// table spliced between marker comments in the project document, and a
// standalone reference document. Generation is a pure function of the
// loaded skills, so regenerating unchanged skills is byte-identical.
package docs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jingkaihe/skillctl/pkg/skills"
)

// GeneratedNotice heads every generated document.
const GeneratedNotice = "<!-- Code generated by skillctl; DO NOT EDIT. -->"

func sorted(all []*skills.Skill) []*skills.Skill {
	out := make([]*skills.Skill, len(all))
	copy(out, all)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DirName < out[j].DirName })
	return out
}

// cell flattens text into a single Markdown table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func code(items []string) string {
	return strings.Join(quoteAll(items), ", ")
}

// Table renders the skills table embedded in the project document.
func Table(all []*skills.Skill) string {
	var b strings.Builder
	b.WriteString("| Skill | Kind | Description | Invocable |\n")
	b.WriteString("|-------|------|-------------|-----------|\n")
	for _, s := range sorted(all) {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", s.DirName, s.Kind(), cell(s.Description()), yesNo(s.Invocable()))
	}
	return b.String()
}

// Reference renders the full skills reference document.
func Reference(all []*skills.Skill) string {
	ordered := sorted(all)

	var b strings.Builder
	b.WriteString(GeneratedNotice + "\n\n")
	b.WriteString("# Skills Reference\n\n")
	fmt.Fprintf(&b, "%d skill(s).\n", len(ordered))

	for _, s := range ordered {
		writeSkill(&b, s)
	}
	return b.String()
}

func writeSkill(b *strings.Builder, s *skills.Skill) {
	fmt.Fprintf(b, "\n## %s\n\n", s.DirName)
	if desc := s.Description(); desc != "" {
		b.WriteString(strings.TrimSpace(desc) + "\n\n")
	}

	fmt.Fprintf(b, "- **Kind:** %s\n", s.Kind())
	fmt.Fprintf(b, "- **User invocable:** %s\n", yesNo(s.Invocable()))
	if s.Header != nil {
		if len(s.Header.AllowedTools) > 0 {
			fmt.Fprintf(b, "- **Allowed tools:** %s\n", code(s.Header.AllowedTools))
		}
		if hook := s.Header.Hooks.PostComplete; hook != "" {
			fmt.Fprintf(b, "- **Post-complete hook:** `%s`\n", hook)
		}
	}
	if s.Collaboration != nil && len(s.Collaboration.Dependencies) > 0 {
		fmt.Fprintf(b, "- **Depends on:** %s\n", code(s.Collaboration.Dependencies))
	}

	if s.Rules != nil && (s.Rules.Summary != "" || len(s.Rules.Rules) > 0) {
		b.WriteString("\n### Rules\n\n")
		if s.Rules.Summary != "" {
			b.WriteString(strings.TrimSpace(s.Rules.Summary) + "\n\n")
		}
		if len(s.Rules.Rules) > 0 {
			b.WriteString("| ID | Severity | Rule |\n")
			b.WriteString("|----|----------|------|\n")
			for _, rule := range s.Rules.Rules {
				severity := rule.Severity
				if severity == "" {
					severity = "must"
				}
				fmt.Fprintf(b, "| %s | %s | %s |\n", cell(rule.ID), severity, cell(rule.Rule))
			}
		}
	}

	if s.Collaboration != nil {
		if len(s.Collaboration.Compositions) > 0 {
			b.WriteString("\n### Compositions\n\n")
			for _, comp := range s.Collaboration.Compositions {
				fmt.Fprintf(b, "- **%s:** %s", comp.Name, strings.Join(quoteAll(comp.Sequence), " → "))
				if comp.Description != "" {
					fmt.Fprintf(b, " (%s)", cell(comp.Description))
				}
				b.WriteString("\n")
			}
		}
		if len(s.Collaboration.Triggers) > 0 {
			b.WriteString("\n### Triggers\n\n")
			for _, trigger := range s.Collaboration.Triggers {
				fmt.Fprintf(b, "- When %s, suggest `%s`.\n", cell(trigger.When), trigger.Suggest)
			}
		}
	}

	if s.Pitfalls != nil && len(s.Pitfalls.Pitfalls) > 0 {
		b.WriteString("\n### Pitfalls\n\n")
		for _, p := range s.Pitfalls.Pitfalls {
			fmt.Fprintf(b, "- **%s %s.**", p.ID, strings.TrimSuffix(cell(p.Title), "."))
			if p.Symptom != "" {
				fmt.Fprintf(b, " Symptom: %s", cell(p.Symptom))
			}
			if p.Fix != "" {
				fmt.Fprintf(b, " Fix: %s", cell(p.Fix))
			}
			b.WriteString("\n")
		}
	}
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "`" + item + "`"
	}
	return out
}
