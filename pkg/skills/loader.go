package skills

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// ErrMissingFrontmatter is recorded when SKILL.md has no front matter block.
var ErrMissingFrontmatter = errors.New("missing front matter")

// LoadSkill reads every convention file present in dir. It only fails when
// dir itself cannot be listed.
func LoadSkill(dir string) (*Skill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skill directory %s", dir)
	}

	s := &Skill{
		DirName:    filepath.Base(dir),
		Directory:  dir,
		LoadErrors: map[string]error{},
	}

	for _, entry := range entries {
		if entry.Type().IsRegular() || entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, entry.Name())); err == nil && !info.IsDir() {
				s.Files = append(s.Files, entry.Name())
			}
		}
	}
	sort.Strings(s.Files)

	if s.HasFile(PointerFile) {
		s.loadPointer()
	}
	if s.HasFile(RulesFile) {
		var rules Rules
		if s.loadYAML(RulesFile, &rules) {
			s.Rules = &rules
		}
	}
	if s.HasFile(CollaborationFile) {
		var collab Collaboration
		if s.loadYAML(CollaborationFile, &collab) {
			s.Collaboration = &collab
		}
	}
	if s.HasFile(PitfallsFile) {
		var pitfalls Pitfalls
		if s.loadYAML(PitfallsFile, &pitfalls) {
			s.Pitfalls = &pitfalls
		}
	}

	return s, nil
}

func (s *Skill) loadPointer() {
	content, err := os.ReadFile(filepath.Join(s.Directory, PointerFile))
	if err != nil {
		s.LoadErrors[PointerFile] = errors.Wrap(err, "failed to read pointer document")
		return
	}

	header, doc, err := parsePointer(content)
	if err != nil {
		s.LoadErrors[PointerFile] = err
		return
	}

	s.Header = header
	s.Body = extractBodyContent(string(content))
	s.PointerLines = countLines(s.Body)

	for _, target := range localLinks(doc) {
		_, statErr := os.Stat(filepath.Join(s.Directory, filepath.FromSlash(target)))
		s.Links = append(s.Links, Link{Target: target, Exists: statErr == nil})
	}
}

// loadYAML decodes a convention document strictly. An empty file decodes to
// the zero value.
func (s *Skill) loadYAML(name string, out any) bool {
	f, err := os.Open(filepath.Join(s.Directory, name))
	if err != nil {
		s.LoadErrors[name] = errors.Wrapf(err, "failed to open %s", name)
		return false
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		s.LoadErrors[name] = errors.Wrapf(err, "failed to parse %s", name)
		return false
	}
	return true
}

func parsePointer(content []byte) (*Frontmatter, ast.Node, error) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	pctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(content), parser.WithContext(pctx))

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid front matter")
	}
	if len(metaData) == 0 {
		return nil, nil, ErrMissingFrontmatter
	}

	header, err := decodeFrontmatter(metaData)
	if err != nil {
		return nil, nil, err
	}
	return header, doc, nil
}

func decodeFrontmatter(raw map[string]any) (*Frontmatter, error) {
	var header Frontmatter
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &header,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create front matter decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "invalid front matter")
	}

	header.Description = strings.TrimSpace(header.Description)
	header.Kind = Kind(strings.TrimSpace(string(header.Kind)))

	tools := header.AllowedTools[:0]
	for _, tool := range header.AllowedTools {
		if tool = strings.TrimSpace(tool); tool != "" {
			tools = append(tools, tool)
		}
	}
	header.AllowedTools = tools

	return &header, nil
}

// localLinks returns the cleaned destinations of links that point inside the
// skill directory, deduplicated and in document order.
func localLinks(doc ast.Node) []string {
	var targets []string
	seen := map[string]bool{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if target, ok := localTarget(string(link.Destination)); ok && !seen[target] {
			seen[target] = true
			targets = append(targets, target)
		}
		return ast.WalkContinue, nil
	})

	return targets
}

func localTarget(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return path.Clean(u.Path), true
}

// extractBodyContent removes YAML front matter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
		}
	}

	return content
}

func countLines(body string) int {
	body = strings.TrimRight(body, "\n")
	if body == "" {
		return 0
	}
	return bytes.Count([]byte(body), []byte("\n")) + 1
}
