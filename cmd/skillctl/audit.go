package main

import (
	"context"
	"fmt"

	"github.com/jingkaihe/skillctl/pkg/audit"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/jingkaihe/skillctl/pkg/presenter"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/spf13/cobra"
)

// AuditConfig holds configuration for the audit and validate commands
type AuditConfig struct {
	Strict bool
	JSON   bool
	Skills []string
}

// NewAuditConfig creates a new AuditConfig with default values
func NewAuditConfig() *AuditConfig {
	return &AuditConfig{
		Strict: cfg.Strict,
		JSON:   false,
		Skills: nil,
	}
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit skills against the multi-YAML convention",
	Long: `Audit every skill, or only the skills named with --skill, for structural and
semantic problems: missing or malformed files, invalid names, dangling
references and broken links. Warnings flag departures from best practice and
only fail the run with --strict.

Cross-references always resolve against the whole skill set.

Examples:
  skillctl audit
  skillctl audit --strict
  skillctl audit --skill commit --skill pr-create --json`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getAuditConfigFromFlags(cmd)
		return runAudit(cmd.Context(), config)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <name>",
	Short: "Audit a single skill",
	Long: `Audit a single skill by directory name. References from the skill still
resolve against the whole skill set.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := audit.ValidateName(args[0], cfg.Limits.NameLength); err != nil {
			return usageError(err)
		}
		config := getAuditConfigFromFlags(cmd)
		config.Skills = []string{args[0]}
		return runAudit(cmd.Context(), config)
	},
}

func init() {
	defaults := NewAuditConfig()
	auditCmd.Flags().Bool("strict", defaults.Strict, "Fail on warnings as well as errors")
	auditCmd.Flags().Bool("json", defaults.JSON, "Print the report as JSON")
	auditCmd.Flags().StringArray("skill", defaults.Skills, "Only report on this skill (repeatable)")

	validateCmd.Flags().Bool("strict", defaults.Strict, "Fail on warnings as well as errors")
	validateCmd.Flags().Bool("json", defaults.JSON, "Print the report as JSON")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(validateCmd)
}

func getAuditConfigFromFlags(cmd *cobra.Command) *AuditConfig {
	config := NewAuditConfig()
	if cmd.Flags().Changed("strict") {
		if strict, err := cmd.Flags().GetBool("strict"); err == nil {
			config.Strict = strict
		}
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	if names, err := cmd.Flags().GetStringArray("skill"); err == nil {
		config.Skills = names
	}
	return config
}

func runAudit(ctx context.Context, config *AuditConfig) error {
	_, all, err := loadSkills(ctx)
	if err != nil {
		return err
	}

	report, err := auditSelected(ctx, all, config.Skills, config.Strict)
	if err != nil {
		return err
	}

	if config.JSON {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if report.Failed() {
		return errReported
	}
	return nil
}

// auditSelected audits the whole set and narrows the report to names, when given.
func auditSelected(ctx context.Context, all []*skills.Skill, names []string, strict bool) (*audit.Report, error) {
	for _, name := range names {
		if _, err := skills.Find(all, name); err != nil {
			return nil, err
		}
	}

	auditConfig := cfg.AuditConfig()
	auditConfig.Strict = strict
	report := audit.New(auditConfig).Audit(ctx, all)
	if len(names) > 0 {
		report = report.ForSkills(uniq(names)...)
	}

	logger.G(ctx).WithField("skills", report.Skills).
		WithField("errors", len(report.Errors())).
		WithField("warnings", len(report.Warnings())).
		Debug("audit finished")
	return report, nil
}

func printReport(report *audit.Report) {
	for _, f := range report.Findings {
		if f.Severity == audit.SeverityError || report.Strict {
			presenter.Failure(f.String())
		} else {
			presenter.Warning(f.String())
		}
	}

	summary := fmt.Sprintf("Audited %d skill(s): %d error(s), %d warning(s)",
		report.Skills, len(report.Errors()), len(report.Warnings()))
	if report.Failed() {
		presenter.Failure(summary)
	} else {
		presenter.Success(summary)
	}
}

func uniq(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
