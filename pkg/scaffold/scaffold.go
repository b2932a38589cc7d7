// Package scaffold creates new skill directories that already satisfy the
// convention for their kind.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/jingkaihe/skillctl/pkg/audit"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TemplateFS holds one template per convention file.
//
//go:embed templates/*.tmpl
var TemplateFS embed.FS

var (
	// ErrSkillExists is returned when the target directory is already present.
	ErrSkillExists = errors.New("skill already exists")
	// ErrUnknownKind is returned when the requested kind has no file table.
	ErrUnknownKind = errors.New("unknown kind")
)

var labels = map[string]string{
	skills.RulesFile:         "Rules",
	skills.CollaborationFile: "Collaboration",
	skills.PitfallsFile:      "Pitfalls",
}

var templates = template.Must(template.New("scaffold").Funcs(template.FuncMap{
	"yaml": yamlScalar,
}).ParseFS(TemplateFS, "templates/*.tmpl"))

// Options describe the skill to create.
type Options struct {
	Name        string
	Kind        skills.Kind
	Description string

	// Kinds overrides the built-in kind table.
	Kinds map[skills.Kind][]string
	// MaxNameLength overrides audit.DefaultMaxNameLength.
	MaxNameLength int
}

type document struct {
	File  string
	Label string
}

type templateData struct {
	Name        string
	Kind        skills.Kind
	Description string
	Title       string
	Prefix      string
	Documents   []document
}

// Create writes a new skill below skillsDir and returns its directory.
// Only the files required by the kind are created, and the pointer links
// each of them.
func Create(skillsDir string, opts Options) (string, error) {
	maxLength := opts.MaxNameLength
	if maxLength <= 0 {
		maxLength = audit.DefaultMaxNameLength
	}
	if err := audit.ValidateName(opts.Name, maxLength); err != nil {
		return "", err
	}

	kind := opts.Kind
	if kind == "" {
		kind = skills.DefaultKind
	}
	kinds := opts.Kinds
	if kinds == nil {
		kinds = skills.DefaultKinds()
	}
	required, ok := kinds[kind]
	if !ok {
		return "", errors.Wrapf(ErrUnknownKind, "%q", kind)
	}

	description := strings.Join(strings.Fields(opts.Description), " ")
	if description == "" {
		description = fmt.Sprintf("Describe what %s does. Use when ...", opts.Name)
	}

	files := orderedFiles(required)
	data := templateData{
		Name:        opts.Name,
		Kind:        kind,
		Description: description,
		Title:       title(opts.Name),
		Prefix:      strings.ToUpper(opts.Name),
	}
	for _, file := range files {
		if file != skills.PointerFile {
			data.Documents = append(data.Documents, document{File: file, Label: labels[file]})
		}
	}

	dir := filepath.Join(skillsDir, opts.Name)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.Wrapf(ErrSkillExists, "%s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}

	for _, file := range files {
		if err := render(dir, file, data); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

// orderedFiles returns the pointer followed by the required documents in
// canonical order.
func orderedFiles(required []string) []string {
	want := map[string]bool{skills.PointerFile: true}
	for _, file := range required {
		want[file] = true
	}

	var out []string
	for _, file := range skills.DocumentFiles {
		if want[file] {
			out = append(out, file)
		}
	}
	return out
}

func render(dir, file string, data templateData) error {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, file+".tmpl", data); err != nil {
		return errors.Wrapf(err, "failed to render %s", file)
	}

	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func yamlScalar(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

func title(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
