// Package audit checks skills for structural and semantic compliance with
// the multi-YAML convention and collects the results into a Report.
package audit

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
)

// Severity of a finding
type Severity string

// Severities
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the check that produced a finding
type Code string

// Error codes
const (
	CodeMissingFile        Code = "missing-file"
	CodeMalformedHeader    Code = "malformed-header"
	CodeMalformedFile      Code = "malformed-file"
	CodeMissingField       Code = "missing-field"
	CodeInvalidName        Code = "invalid-name"
	CodeNameTooLong        Code = "name-too-long"
	CodeNameMismatch       Code = "name-mismatch"
	CodeDuplicateName      Code = "duplicate-name"
	CodeDescriptionTooLong Code = "description-too-long"
	CodeUnknownKind        Code = "unknown-kind"
	CodeDanglingReference  Code = "dangling-reference"
	CodeBrokenLink         Code = "broken-link"
	CodeDuplicateID        Code = "duplicate-id"
	CodeInvalidSeverity    Code = "invalid-severity"
)

// Warning codes
const (
	CodePointerTooLong       Code = "pointer-too-long"
	CodeMissingTriggerPhrase Code = "missing-trigger-phrase"
	CodeSelfReference        Code = "self-reference"
	CodeUnlinkedDocument     Code = "unlinked-document"
	CodeEmptyRules           Code = "empty-rules"
	CodeEmptyPitfalls        Code = "empty-pitfalls"
	CodeUnexpectedFile       Code = "unexpected-file"
)

// Finding is a single audit result
type Finding struct {
	Skill    string   `json:"skill"`
	File     string   `json:"file,omitempty"`
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	location := f.Skill
	if f.File != "" {
		location += "/" + f.File
	}
	return fmt.Sprintf("%s: [%s] %s", location, f.Code, f.Message)
}

// Report is the outcome of an audit run
type Report struct {
	Skills   int       `json:"skills"`
	Strict   bool      `json:"strict"`
	Findings []Finding `json:"findings"`
}

// Errors returns the error-severity findings
func (r *Report) Errors() []Finding {
	return r.bySeverity(SeverityError)
}

// Warnings returns the warning-severity findings
func (r *Report) Warnings() []Finding {
	return r.bySeverity(SeverityWarning)
}

func (r *Report) bySeverity(severity Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// Failing returns the findings that make the run fail: errors, plus
// warnings in strict mode.
func (r *Report) Failing() []Finding {
	if r.Strict {
		return r.Findings
	}
	return r.Errors()
}

// Failed reports whether the run should exit non-zero
func (r *Report) Failed() bool {
	return len(r.Failing()) > 0
}

// Err aggregates the failing findings, or returns nil.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failing() {
		result = multierror.Append(result, errors.New(f.String()))
	}
	return result.ErrorOrNil()
}

// ForSkills returns a report restricted to the named skill directories.
func (r *Report) ForSkills(names ...string) *Report {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	out := &Report{Skills: len(names), Strict: r.Strict, Findings: []Finding{}}
	for _, f := range r.Findings {
		if wanted[f.Skill] {
			out.Findings = append(out.Findings, f)
		}
	}
	return out
}

// Config tunes the audit
type Config struct {
	Kinds                map[skills.Kind][]string
	MaxNameLength        int
	MaxDescriptionLength int
	MaxPointerLines      int
	Strict               bool
}

// Default limits
const (
	DefaultMaxDescriptionLength = 1024
	DefaultMaxPointerLines      = 100
)

// DefaultConfig returns the built-in audit configuration
func DefaultConfig() Config {
	return Config{
		Kinds:                skills.DefaultKinds(),
		MaxNameLength:        DefaultMaxNameLength,
		MaxDescriptionLength: DefaultMaxDescriptionLength,
		MaxPointerLines:      DefaultMaxPointerLines,
	}
}

// Auditor runs every check over a set of skills
type Auditor struct {
	config Config
}

// New creates an Auditor. Zero limits fall back to the defaults.
func New(config Config) *Auditor {
	defaults := DefaultConfig()
	if config.Kinds == nil {
		config.Kinds = defaults.Kinds
	}
	if config.MaxNameLength <= 0 {
		config.MaxNameLength = defaults.MaxNameLength
	}
	if config.MaxDescriptionLength <= 0 {
		config.MaxDescriptionLength = defaults.MaxDescriptionLength
	}
	if config.MaxPointerLines <= 0 {
		config.MaxPointerLines = defaults.MaxPointerLines
	}
	return &Auditor{config: config}
}

// Audit checks all skills. References resolve against the whole set, so
// callers auditing a subset should pass every skill and narrow the report
// with ForSkills.
func (a *Auditor) Audit(ctx context.Context, all []*skills.Skill) *Report {
	known := make(map[string]bool, len(all))
	for _, s := range all {
		known[s.DirName] = true
	}

	c := &checker{config: a.config, known: known}
	for _, s := range all {
		c.checkSkill(s)
	}
	c.checkDuplicateNames(all)

	findings := c.findings
	if findings == nil {
		findings = []Finding{}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		fi, fj := findings[i], findings[j]
		if fi.Skill != fj.Skill {
			return fi.Skill < fj.Skill
		}
		if fi.File != fj.File {
			return fi.File < fj.File
		}
		if fi.Code != fj.Code {
			return fi.Code < fj.Code
		}
		return fi.Message < fj.Message
	})

	report := &Report{Skills: len(all), Strict: a.config.Strict, Findings: findings}
	logger.G(ctx).
		WithField("skills", report.Skills).
		WithField("errors", len(report.Errors())).
		WithField("warnings", len(report.Warnings())).
		Debug("audit finished")

	return report
}
