package skills

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/pkg/errors"
)

// DefaultSkillsDir is where skills live relative to the project root.
const DefaultSkillsDir = ".claude/skills"

var (
	// ErrSkillsDirNotFound is returned when the top-level skills directory is missing.
	ErrSkillsDirNotFound = errors.New("skills directory not found")
	// ErrSkillNotFound is returned by Get for an unknown skill.
	ErrSkillNotFound = errors.New("skill not found")
)

// Discovery finds skill directories below a skills root.
type Discovery struct {
	skillsDir string
	ignore    []glob.Glob
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillsDir sets the skills root directory
func WithSkillsDir(dir string) Option {
	return func(d *Discovery) error {
		if dir == "" {
			return errors.New("skills directory must not be empty")
		}
		d.skillsDir = dir
		return nil
	}
}

// WithIgnore skips skill directories whose name matches any of the glob patterns
func WithIgnore(patterns ...string) Option {
	return func(d *Discovery) error {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern)
			if err != nil {
				return errors.Wrapf(err, "invalid ignore pattern %q", pattern)
			}
			d.ignore = append(d.ignore, g)
		}
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{skillsDir: DefaultSkillsDir}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Dir returns the skills root directory
func (d *Discovery) Dir() string {
	return d.skillsDir
}

// Discover loads every skill directory, sorted by directory name. Hidden and
// ignored directories are skipped. A missing root is the only fatal error.
func (d *Discovery) Discover(ctx context.Context) ([]*Skill, error) {
	log := logger.G(ctx).WithField("skills_dir", d.skillsDir)

	info, err := os.Stat(d.skillsDir)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrapf(ErrSkillsDirNotFound, "%s", d.skillsDir)
	}

	entries, err := os.ReadDir(d.skillsDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", d.skillsDir)
	}

	var skills []*Skill
	for _, entry := range entries {
		name := entry.Name()
		entryPath := filepath.Join(d.skillsDir, name)

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if d.ignored(name) {
			log.WithField("skill", name).Debug("skipping ignored skill directory")
			continue
		}

		skill, err := LoadSkill(entryPath)
		if err != nil {
			return nil, err
		}
		for file, loadErr := range skill.LoadErrors {
			log.WithField("skill", name).WithField("file", file).WithError(loadErr).Debug("skill file failed to load")
		}
		skills = append(skills, skill)
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].DirName < skills[j].DirName })
	log.WithField("count", len(skills)).Debug("discovered skills")

	return skills, nil
}

func (d *Discovery) ignored(name string) bool {
	for _, g := range d.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Get returns a specific skill by directory name
func (d *Discovery) Get(ctx context.Context, name string) (*Skill, error) {
	all, err := d.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return Find(all, name)
}

// Find returns the skill with the given directory name from a discovered set.
func Find(all []*Skill, name string) (*Skill, error) {
	for _, skill := range all {
		if skill.DirName == name {
			return skill, nil
		}
	}
	return nil, errors.Wrapf(ErrSkillNotFound, "%q", name)
}

// Names returns the sorted directory names of all skills
func (d *Discovery) Names(ctx context.Context) ([]string, error) {
	all, err := d.Discover(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(all))
	for _, skill := range all {
		names = append(names, skill.DirName)
	}
	return names, nil
}

// FilterByNames keeps the skills whose directory name is listed.
// If names is empty, all skills are returned.
func FilterByNames(all []*Skill, names []string) []*Skill {
	if len(names) == 0 {
		return all
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	filtered := make([]*Skill, 0, len(names))
	for _, skill := range all {
		if wanted[skill.DirName] {
			filtered = append(filtered, skill)
		}
	}
	return filtered
}
