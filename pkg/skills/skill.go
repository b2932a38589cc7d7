// Package skills loads skills laid out with the multi-YAML convention: one
// directory per skill holding a thin SKILL.md pointer document with YAML
// front matter, plus rules.yaml, collaboration.yaml and pitfalls.yaml.
package skills

import (
	"sort"
)

// Convention file names.
const (
	PointerFile       = "SKILL.md"
	RulesFile         = "rules.yaml"
	CollaborationFile = "collaboration.yaml"
	PitfallsFile      = "pitfalls.yaml"
)

// DocumentFiles lists the convention's files in canonical order.
var DocumentFiles = []string{PointerFile, RulesFile, CollaborationFile, PitfallsFile}

// Kind is the category of a skill. It decides which files are required.
type Kind string

// Built-in kinds
const (
	KindWorkflow     Kind = "workflow"
	KindReference    Kind = "reference"
	KindOrchestrator Kind = "orchestrator"

	DefaultKind = KindWorkflow
)

// DefaultKinds returns the built-in kind table. The result is a fresh copy.
func DefaultKinds() map[Kind][]string {
	return map[Kind][]string{
		KindWorkflow:     {PointerFile, RulesFile, CollaborationFile, PitfallsFile},
		KindReference:    {PointerFile, RulesFile},
		KindOrchestrator: {PointerFile, RulesFile, CollaborationFile},
	}
}

// Frontmatter is the structured header of SKILL.md.
type Frontmatter struct {
	Name          string   `mapstructure:"name" yaml:"name" json:"name" jsonschema:"required,pattern=^[a-z0-9]+(-[a-z0-9]+)*$"`
	Description   string   `mapstructure:"description" yaml:"description" json:"description" jsonschema:"required"`
	Kind          Kind     `mapstructure:"kind" yaml:"kind,omitempty" json:"kind,omitempty" jsonschema:"enum=workflow,enum=reference,enum=orchestrator"`
	UserInvocable *bool    `mapstructure:"user-invocable" yaml:"user-invocable,omitempty" json:"user-invocable,omitempty"`
	AllowedTools  []string `mapstructure:"allowed-tools" yaml:"allowed-tools,omitempty" json:"allowed-tools,omitempty"`
	Hooks         Hooks    `mapstructure:"hooks" yaml:"hooks,omitempty" json:"hooks,omitempty"`
}

// Hooks holds commands the assistant runs around a skill invocation.
type Hooks struct {
	PostComplete string `mapstructure:"post-complete" yaml:"post-complete,omitempty" json:"post-complete,omitempty"`
}

// Rule is a single canonical rule.
type Rule struct {
	ID        string `yaml:"id" json:"id" jsonschema:"required"`
	Rule      string `yaml:"rule" json:"rule" jsonschema:"required"`
	Severity  string `yaml:"severity,omitempty" json:"severity,omitempty" jsonschema:"enum=must,enum=should,enum=may"`
	Rationale string `yaml:"rationale,omitempty" json:"rationale,omitempty"`
}

// Rules is the content of rules.yaml.
type Rules struct {
	Summary string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Rules   []Rule `yaml:"rules" json:"rules"`
}

// Composition is a named sequence of skills run one after the other.
type Composition struct {
	Name        string   `yaml:"name" json:"name" jsonschema:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Sequence    []string `yaml:"sequence" json:"sequence" jsonschema:"required"`
}

// Trigger suggests another skill when a situation arises.
type Trigger struct {
	When    string `yaml:"when" json:"when" jsonschema:"required"`
	Suggest string `yaml:"suggest" json:"suggest" jsonschema:"required"`
}

// Collaboration is the content of collaboration.yaml.
type Collaboration struct {
	Dependencies []string      `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Compositions []Composition `yaml:"compositions,omitempty" json:"compositions,omitempty"`
	Triggers     []Trigger     `yaml:"triggers,omitempty" json:"triggers,omitempty"`
}

// Pitfall is a known failure mode and its fix.
type Pitfall struct {
	ID      string `yaml:"id" json:"id" jsonschema:"required"`
	Title   string `yaml:"title" json:"title" jsonschema:"required"`
	Symptom string `yaml:"symptom,omitempty" json:"symptom,omitempty"`
	Fix     string `yaml:"fix,omitempty" json:"fix,omitempty"`
}

// Pitfalls is the content of pitfalls.yaml.
type Pitfalls struct {
	Pitfalls []Pitfall `yaml:"pitfalls" json:"pitfalls"`
}

// Link is a local link found in the pointer document body.
type Link struct {
	Target string // cleaned, relative to the skill directory
	Exists bool
}

// Reference is a pointer from a skill's collaboration data to another skill.
type Reference struct {
	Target string
	Source string // e.g. "dependencies", "compositions[ship]", "triggers"
}

// Skill is a loaded skill directory. Load problems are recorded per file in
// LoadErrors instead of aborting, so that every finding can be reported.
type Skill struct {
	DirName   string
	Directory string

	Header       *Frontmatter
	Body         string
	PointerLines int
	Links        []Link

	Rules         *Rules
	Collaboration *Collaboration
	Pitfalls      *Pitfalls

	Files      []string
	LoadErrors map[string]error
}

// Name returns the declared name, or the directory name when the header is unusable.
func (s *Skill) Name() string {
	if s.Header != nil && s.Header.Name != "" {
		return s.Header.Name
	}
	return s.DirName
}

// Kind returns the declared kind, defaulting to DefaultKind.
func (s *Skill) Kind() Kind {
	if s.Header == nil || s.Header.Kind == "" {
		return DefaultKind
	}
	return s.Header.Kind
}

// Description returns the declared description, if any.
func (s *Skill) Description() string {
	if s.Header == nil {
		return ""
	}
	return s.Header.Description
}

// Invocable reports whether the user may invoke the skill directly.
func (s *Skill) Invocable() bool {
	if s.Header == nil || s.Header.UserInvocable == nil {
		return true
	}
	return *s.Header.UserInvocable
}

// HasFile reports whether a top-level file exists in the skill directory.
func (s *Skill) HasFile(name string) bool {
	i := sort.SearchStrings(s.Files, name)
	return i < len(s.Files) && s.Files[i] == name
}

// References returns every skill name mentioned in collaboration.yaml, in file order.
func (s *Skill) References() []Reference {
	if s.Collaboration == nil {
		return nil
	}

	var refs []Reference
	for _, dep := range s.Collaboration.Dependencies {
		refs = append(refs, Reference{Target: dep, Source: "dependencies"})
	}
	for _, comp := range s.Collaboration.Compositions {
		for _, step := range comp.Sequence {
			refs = append(refs, Reference{Target: step, Source: "compositions[" + comp.Name + "]"})
		}
	}
	for _, trigger := range s.Collaboration.Triggers {
		refs = append(refs, Reference{Target: trigger.Suggest, Source: "triggers"})
	}
	return refs
}
