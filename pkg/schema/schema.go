// Package schema publishes JSON Schemas for the skill documents so editors
// can validate them while they are written.
package schema

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
)

// ErrUnknownDocument is returned for a document name with no schema.
var ErrUnknownDocument = errors.New("unknown document")

type document struct {
	file   string
	value  any
	title  string
	open   bool // extra properties allowed
	extend func(*jsonschema.Schema)
}

var documents = map[string]document{
	"frontmatter":   {file: skills.PointerFile, value: &skills.Frontmatter{}, title: "SKILL.md front matter", open: true, extend: allowedToolsOneOf},
	"rules":         {file: skills.RulesFile, value: &skills.Rules{}, title: "rules.yaml"},
	"collaboration": {file: skills.CollaborationFile, value: &skills.Collaboration{}, title: "collaboration.yaml"},
	"pitfalls":      {file: skills.PitfallsFile, value: &skills.Pitfalls{}, title: "pitfalls.yaml"},
}

// Documents lists the names accepted by For.
func Documents() []string {
	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (document, bool) {
	if doc, ok := documents[name]; ok {
		return doc, true
	}
	for _, doc := range documents {
		if doc.file == name {
			return doc, true
		}
	}
	return document{}, false
}

// Reflect returns the schema for a document, by name or by file name.
func Reflect(name string) (*jsonschema.Schema, error) {
	doc, ok := lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDocument, "%q", name)
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := reflector.Reflect(doc.value)
	s.Title = doc.title
	if doc.open {
		s.AdditionalProperties = nil
	}
	if doc.extend != nil {
		doc.extend(s)
	}
	return s, nil
}

// allowedToolsOneOf also accepts allowed-tools as a comma-separated string,
// as the loader does.
func allowedToolsOneOf(s *jsonschema.Schema) {
	list, ok := s.Properties.Get("allowed-tools")
	if !ok {
		return
	}
	s.Properties.Set("allowed-tools", &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			list,
			{Type: "string", Description: "Comma-separated tool names"},
		},
	})
}

// For returns the indented JSON encoding of the document's schema.
func For(name string) ([]byte, error) {
	s, err := Reflect(name)
	if err != nil {
		return nil, err
	}

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode schema for %s", name)
	}
	return append(out, '\n'), nil
}
