package audit

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
)

const triggerPhrase = "use when"

var validSeverities = map[string]bool{"must": true, "should": true, "may": true}

type checker struct {
	config   Config
	known    map[string]bool
	findings []Finding
}

func (c *checker) add(s *skills.Skill, file string, code Code, severity Severity, format string, args ...any) {
	c.findings = append(c.findings, Finding{
		Skill:    s.DirName,
		File:     file,
		Code:     code,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) errorf(s *skills.Skill, file string, code Code, format string, args ...any) {
	c.add(s, file, code, SeverityError, format, args...)
}

func (c *checker) warnf(s *skills.Skill, file string, code Code, format string, args ...any) {
	c.add(s, file, code, SeverityWarning, format, args...)
}

func (c *checker) checkSkill(s *skills.Skill) {
	c.checkFiles(s)
	c.checkHeader(s)
	c.checkPointerBody(s)
	c.checkRules(s)
	c.checkCollaboration(s)
	c.checkPitfalls(s)
}

// requiredFiles returns the file set for the skill's kind. An unknown kind
// only requires the pointer document.
func (c *checker) requiredFiles(s *skills.Skill) ([]string, bool) {
	required, ok := c.config.Kinds[s.Kind()]
	if !ok {
		return []string{skills.PointerFile}, false
	}
	return required, true
}

func (c *checker) checkFiles(s *skills.Skill) {
	required, _ := c.requiredFiles(s)
	for _, file := range required {
		if !s.HasFile(file) {
			c.errorf(s, file, CodeMissingFile, "%s skill requires %s", s.Kind(), file)
		}
	}

	convention := make(map[string]bool, len(skills.DocumentFiles))
	for _, file := range skills.DocumentFiles {
		convention[file] = true
	}
	for _, file := range s.Files {
		ext := strings.ToLower(path.Ext(file))
		if convention[file] || (ext != ".yaml" && ext != ".yml" && ext != ".md") {
			continue
		}
		c.warnf(s, file, CodeUnexpectedFile, "%s is not part of the skill convention", file)
	}
}

func (c *checker) checkHeader(s *skills.Skill) {
	if err, ok := s.LoadErrors[skills.PointerFile]; ok {
		c.errorf(s, skills.PointerFile, CodeMalformedHeader, "%v", err)
		return
	}
	if s.Header == nil {
		return
	}

	h := s.Header
	if h.Name == "" {
		c.errorf(s, skills.PointerFile, CodeMissingField, "name is required")
	} else {
		c.checkName(s, h.Name)
	}

	if _, ok := c.requiredFiles(s); !ok {
		c.errorf(s, skills.PointerFile, CodeUnknownKind, "unknown kind %q, expected one of %s", h.Kind, strings.Join(c.kindNames(), ", "))
	}

	switch {
	case h.Description == "":
		c.errorf(s, skills.PointerFile, CodeMissingField, "description is required")
	case utf8.RuneCountInString(h.Description) > c.config.MaxDescriptionLength:
		c.errorf(s, skills.PointerFile, CodeDescriptionTooLong, "description is %d characters, limit is %d", utf8.RuneCountInString(h.Description), c.config.MaxDescriptionLength)
	case !strings.Contains(strings.ToLower(h.Description), triggerPhrase):
		c.warnf(s, skills.PointerFile, CodeMissingTriggerPhrase, "description should say when to use the skill (\"Use when ...\")")
	}
}

// checkName applies the naming rules independently of every other field.
func (c *checker) checkName(s *skills.Skill, name string) {
	if err := ValidateName(name, c.config.MaxNameLength); err != nil {
		code := CodeInvalidName
		if errors.Is(err, ErrNameTooLong) {
			code = CodeNameTooLong
		}
		c.errorf(s, skills.PointerFile, code, "%v", err)
	}
	if name != s.DirName {
		c.errorf(s, skills.PointerFile, CodeNameMismatch, "name %q does not match directory %q", name, s.DirName)
	}
}

func (c *checker) kindNames() []string {
	names := make([]string, 0, len(c.config.Kinds))
	for kind := range c.config.Kinds {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	return names
}

func (c *checker) checkPointerBody(s *skills.Skill) {
	if s.Header == nil {
		return
	}

	if s.PointerLines > c.config.MaxPointerLines {
		c.warnf(s, skills.PointerFile, CodePointerTooLong, "pointer document has %d lines, keep it under %d and move rules into %s", s.PointerLines, c.config.MaxPointerLines, skills.RulesFile)
	}

	linked := make(map[string]bool, len(s.Links))
	for _, link := range s.Links {
		linked[link.Target] = true
		if !link.Exists {
			c.errorf(s, skills.PointerFile, CodeBrokenLink, "link target %s does not exist", link.Target)
		}
	}

	for _, doc := range skills.DocumentFiles[1:] {
		if s.HasFile(doc) && !linked[doc] {
			c.warnf(s, skills.PointerFile, CodeUnlinkedDocument, "pointer document does not link %s", doc)
		}
	}
}

func (c *checker) checkRules(s *skills.Skill) {
	if err, ok := s.LoadErrors[skills.RulesFile]; ok {
		c.errorf(s, skills.RulesFile, CodeMalformedFile, "%v", err)
		return
	}
	if s.Rules == nil {
		return
	}
	if len(s.Rules.Rules) == 0 {
		c.warnf(s, skills.RulesFile, CodeEmptyRules, "no rules defined")
		return
	}

	seen := map[string]bool{}
	for i, rule := range s.Rules.Rules {
		switch {
		case rule.ID == "":
			c.errorf(s, skills.RulesFile, CodeMissingField, "rule %d has no id", i+1)
		case seen[rule.ID]:
			c.errorf(s, skills.RulesFile, CodeDuplicateID, "rule id %s is used more than once", rule.ID)
		}
		seen[rule.ID] = true

		if strings.TrimSpace(rule.Rule) == "" {
			c.errorf(s, skills.RulesFile, CodeMissingField, "rule %d has no text", i+1)
		}
		if rule.Severity != "" && !validSeverities[rule.Severity] {
			c.errorf(s, skills.RulesFile, CodeInvalidSeverity, "rule %d severity %q must be must, should or may", i+1, rule.Severity)
		}
	}
}

func (c *checker) checkCollaboration(s *skills.Skill) {
	if err, ok := s.LoadErrors[skills.CollaborationFile]; ok {
		c.errorf(s, skills.CollaborationFile, CodeMalformedFile, "%v", err)
		return
	}

	for _, ref := range s.References() {
		switch {
		case ref.Target == "":
			c.errorf(s, skills.CollaborationFile, CodeMissingField, "%s contains an empty skill name", ref.Source)
		case !c.known[ref.Target]:
			c.errorf(s, skills.CollaborationFile, CodeDanglingReference, "%s references unknown skill %q", ref.Source, ref.Target)
		case ref.Target == s.DirName && ref.Source == "dependencies":
			c.warnf(s, skills.CollaborationFile, CodeSelfReference, "skill depends on itself")
		}
	}
}

func (c *checker) checkPitfalls(s *skills.Skill) {
	if err, ok := s.LoadErrors[skills.PitfallsFile]; ok {
		c.errorf(s, skills.PitfallsFile, CodeMalformedFile, "%v", err)
		return
	}
	if s.Pitfalls == nil {
		return
	}
	if len(s.Pitfalls.Pitfalls) == 0 {
		c.warnf(s, skills.PitfallsFile, CodeEmptyPitfalls, "no pitfalls documented")
		return
	}

	seen := map[string]bool{}
	for i, pitfall := range s.Pitfalls.Pitfalls {
		switch {
		case pitfall.ID == "":
			c.errorf(s, skills.PitfallsFile, CodeMissingField, "pitfall %d has no id", i+1)
		case seen[pitfall.ID]:
			c.errorf(s, skills.PitfallsFile, CodeDuplicateID, "pitfall id %s is used more than once", pitfall.ID)
		}
		seen[pitfall.ID] = true

		if strings.TrimSpace(pitfall.Title) == "" {
			c.errorf(s, skills.PitfallsFile, CodeMissingField, "pitfall %d has no title", i+1)
		}
	}
}

// checkDuplicateNames flags every skill whose declared name is also declared
// by another directory.
func (c *checker) checkDuplicateNames(all []*skills.Skill) {
	byName := map[string][]string{}
	for _, s := range all {
		if s.Header == nil || s.Header.Name == "" {
			continue
		}
		byName[s.Header.Name] = append(byName[s.Header.Name], s.DirName)
	}

	for _, s := range all {
		if s.Header == nil || s.Header.Name == "" {
			continue
		}
		dirs := byName[s.Header.Name]
		if len(dirs) < 2 {
			continue
		}
		var others []string
		for _, dir := range dirs {
			if dir != s.DirName {
				others = append(others, dir)
			}
		}
		c.errorf(s, skills.PointerFile, CodeDuplicateName, "name %q is also declared by %s", s.Header.Name, strings.Join(others, ", "))
	}
}
