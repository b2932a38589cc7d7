// Package config loads skillctl settings from flags, SKILLCTL_* environment
// variables and an optional YAML config file through viper.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillctl/pkg/audit"
	"github.com/jingkaihe/skillctl/pkg/docs"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by skillctl.
const EnvPrefix = "SKILLCTL"

// Default locations
const (
	DefaultProjectDoc   = "CLAUDE.md"
	DefaultReferenceDoc = "docs/skills-reference.md"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"

	// LocalConfigFile is looked up in the working directory.
	LocalConfigFile = ".skillctl.yaml"
)

// Markers configures the comments delimiting the generated skills table.
type Markers struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// Limits configures the audit caps.
type Limits struct {
	NameLength        int `mapstructure:"name_length"`
	DescriptionLength int `mapstructure:"description_length"`
	PointerLines      int `mapstructure:"pointer_lines"`
}

// Config is the resolved skillctl configuration.
type Config struct {
	SkillsDir    string              `mapstructure:"skills_dir"`
	ProjectDoc   string              `mapstructure:"project_doc"`
	ReferenceDoc string              `mapstructure:"reference_doc"`
	Markers      Markers             `mapstructure:"markers"`
	Strict       bool                `mapstructure:"strict"`
	Ignore       []string            `mapstructure:"ignore"`
	Limits       Limits              `mapstructure:"limits"`
	Kinds        map[string][]string `mapstructure:"kinds"`
	LogLevel     string              `mapstructure:"log_level"`
	LogFormat    string              `mapstructure:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SkillsDir:    skills.DefaultSkillsDir,
		ProjectDoc:   DefaultProjectDoc,
		ReferenceDoc: DefaultReferenceDoc,
		Markers: Markers{
			Start: docs.DefaultStartMarker,
			End:   docs.DefaultEndMarker,
		},
		Limits: Limits{
			NameLength:        audit.DefaultMaxNameLength,
			DescriptionLength: audit.DefaultMaxDescriptionLength,
			PointerLines:      audit.DefaultMaxPointerLines,
		},
		Kinds:     defaultKinds(),
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

func defaultKinds() map[string][]string {
	out := map[string][]string{}
	for kind, files := range skills.DefaultKinds() {
		out[string(kind)] = files
	}
	return out
}

// New returns a viper instance reading SKILLCTL_* variables with defaults set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal. Kinds are merged in Load instead.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("skills_dir", d.SkillsDir)
	v.SetDefault("project_doc", d.ProjectDoc)
	v.SetDefault("reference_doc", d.ReferenceDoc)
	v.SetDefault("markers.start", d.Markers.Start)
	v.SetDefault("markers.end", d.Markers.End)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("ignore", []string{})
	v.SetDefault("limits.name_length", d.Limits.NameLength)
	v.SetDefault("limits.description_length", d.Limits.DescriptionLength)
	v.SetDefault("limits.pointer_lines", d.Limits.PointerLines)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// ReadInConfig loads the config file. An explicit path must exist; otherwise
// .skillctl.yaml in the working directory, then ~/.skillctl/config.yaml, are
// tried. It returns the file used, or "" when there is none.
func ReadInConfig(v *viper.Viper, path string) (string, error) {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return "", nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", errors.Wrapf(err, "failed to read config file %s", path)
	}
	return path, nil
}

func findConfigFile() string {
	candidates := []string{LocalConfigFile}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".skillctl", "config.yaml"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load decodes the configuration held by v. Configured kinds extend or
// replace the built-in ones by name.
func Load(v *viper.Viper) (Config, error) {
	config := Default()
	config.Kinds = nil
	if err := v.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	kinds := defaultKinds()
	for kind, files := range config.Kinds {
		kinds[strings.ToLower(kind)] = files
	}
	config.Kinds = kinds

	return config, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, errors.Errorf(format, args...))
	}

	if strings.TrimSpace(c.SkillsDir) == "" {
		add("skills_dir must not be empty")
	}
	if strings.TrimSpace(c.ProjectDoc) == "" {
		add("project_doc must not be empty")
	}
	if strings.TrimSpace(c.ReferenceDoc) == "" {
		add("reference_doc must not be empty")
	}

	switch {
	case c.Markers.Start == "" || c.Markers.End == "":
		add("markers.start and markers.end must not be empty")
	case c.Markers.Start == c.Markers.End:
		add("markers.start and markers.end must differ")
	}

	limits := []struct {
		key   string
		value int
	}{
		{"limits.name_length", c.Limits.NameLength},
		{"limits.description_length", c.Limits.DescriptionLength},
		{"limits.pointer_lines", c.Limits.PointerLines},
	}
	for _, l := range limits {
		if l.value <= 0 {
			add("%s must be positive, got %d", l.key, l.value)
		}
	}

	for _, kind := range sortedKeys(c.Kinds) {
		if err := validateKind(c.Kinds[kind]); err != nil {
			add("kinds.%s: %v", kind, err)
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		add("log_level: %v", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		add("log_format must be text or json, got %q", c.LogFormat)
	}

	return result.ErrorOrNil()
}

func validateKind(files []string) error {
	convention := map[string]bool{}
	for _, file := range skills.DocumentFiles {
		convention[file] = true
	}

	hasPointer := false
	for _, file := range files {
		if !convention[file] {
			return errors.Errorf("%s is not a convention file (%s)", file, strings.Join(skills.DocumentFiles, ", "))
		}
		if file == skills.PointerFile {
			hasPointer = true
		}
	}
	if !hasPointer {
		return errors.Errorf("must require %s", skills.PointerFile)
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AuditConfig returns the auditor settings.
func (c Config) AuditConfig() audit.Config {
	kinds := make(map[skills.Kind][]string, len(c.Kinds))
	for kind, files := range c.Kinds {
		kinds[skills.Kind(kind)] = append([]string(nil), files...)
	}
	return audit.Config{
		Kinds:                kinds,
		MaxNameLength:        c.Limits.NameLength,
		MaxDescriptionLength: c.Limits.DescriptionLength,
		MaxPointerLines:      c.Limits.PointerLines,
		Strict:               c.Strict,
	}
}

// DocMarkers returns the table markers.
func (c Config) DocMarkers() docs.Markers {
	return docs.Markers{Start: c.Markers.Start, End: c.Markers.End}
}

// DiscoveryOptions returns the options for skills.NewDiscovery.
func (c Config) DiscoveryOptions() []skills.Option {
	return []skills.Option{
		skills.WithSkillsDir(c.SkillsDir),
		skills.WithIgnore(c.Ignore...),
	}
}

// LoggerOptions returns the logging settings.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.LogLevel, Format: c.LogFormat}
}
