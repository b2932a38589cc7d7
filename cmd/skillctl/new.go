package main

import (
	"fmt"
	"path/filepath"

	"github.com/jingkaihe/skillctl/pkg/audit"
	"github.com/jingkaihe/skillctl/pkg/presenter"
	"github.com/jingkaihe/skillctl/pkg/scaffold"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewSkillConfig holds configuration for the new command
type NewSkillConfig struct {
	Kind        string
	Description string
}

// NewNewSkillConfig creates a new NewSkillConfig with default values
func NewNewSkillConfig() *NewSkillConfig {
	return &NewSkillConfig{
		Kind:        string(skills.DefaultKind),
		Description: "",
	}
}

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new skill",
	Long: `Create a skill directory holding the files its kind requires, with a SKILL.md
pointer that links each of them. The result passes 'skillctl audit'.

Examples:
  skillctl new pr-create
  skillctl new glossary --kind reference --description "Project terms. Use when a term is unclear."`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getNewSkillConfigFromFlags(cmd)

		dir, err := scaffold.Create(cfg.SkillsDir, scaffold.Options{
			Name:          args[0],
			Kind:          skills.Kind(config.Kind),
			Description:   config.Description,
			Kinds:         cfg.AuditConfig().Kinds,
			MaxNameLength: cfg.Limits.NameLength,
		})
		switch {
		case errors.Is(err, audit.ErrInvalidName), errors.Is(err, audit.ErrNameTooLong), errors.Is(err, scaffold.ErrUnknownKind):
			return usageError(err)
		case err != nil:
			return err
		}

		presenter.Success(fmt.Sprintf("Created %s skill '%s' in %s", config.Kind, args[0], dir))
		for _, file := range cfg.Kinds[config.Kind] {
			presenter.Info("  " + filepath.Join(dir, file))
		}
		return nil
	},
}

func init() {
	defaults := NewNewSkillConfig()
	newCmd.Flags().StringP("kind", "k", defaults.Kind, "Skill kind (workflow, reference, orchestrator or a configured kind)")
	newCmd.Flags().StringP("description", "d", defaults.Description, "Skill description, ideally ending with \"Use when ...\"")
	rootCmd.AddCommand(newCmd)
}

func getNewSkillConfigFromFlags(cmd *cobra.Command) *NewSkillConfig {
	config := NewNewSkillConfig()
	if kind, err := cmd.Flags().GetString("kind"); err == nil {
		config.Kind = kind
	}
	if description, err := cmd.Flags().GetString("description"); err == nil {
		config.Description = description
	}
	return config
}
