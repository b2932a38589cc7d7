package main

import (
	"fmt"

	"github.com/jingkaihe/skillctl/pkg/hooks"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/spf13/cobra"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Entry points for assistant hooks",
	Long: `Entry points for Claude Code hooks. Register them in .claude/settings.json:

  {
    "hooks": {
      "PostToolUse": [
        {
          "matcher": "Write|Edit|MultiEdit",
          "hooks": [{"type": "command", "command": "skillctl hook post-tool-use"}]
        }
      ]
    }
  }`,
	RunE: groupRunE,
}

var hookPostToolUseCmd = &cobra.Command{
	Use:   "post-tool-use",
	Short: "Audit the skill touched by the last tool call",
	Long: `Read a PostToolUse payload on stdin. When the tool edited a file inside a
skill directory, audit that skill. Failing findings are written to stderr and
the command exits with status 2 so that the assistant sees them and fixes the
skill. Edits outside the skills directory exit 0 without output.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		payload, err := hooks.ParsePostToolUse(cmd.InOrStdin())
		if err != nil {
			return err
		}

		skill, ok := hooks.AffectedSkill(payload, cfg.SkillsDir)
		log := logger.G(ctx).WithField("tool", payload.ToolName).WithField("file", payload.ToolInput.Path())
		if !ok {
			log.Debug("edit does not touch a skill")
			return nil
		}
		log = log.WithField("skill", skill)

		strict := cfg.Strict
		if cmd.Flags().Changed("strict") {
			strict, _ = cmd.Flags().GetBool("strict")
		}

		_, all, err := loadSkills(ctx)
		if err != nil {
			return err
		}
		report, err := auditSelected(ctx, all, nil, strict)
		if err != nil {
			return err
		}
		report = report.ForSkills(skill)

		if !report.Failed() {
			log.Debug("skill passed audit")
			return nil
		}

		stderr := cmd.ErrOrStderr()
		fmt.Fprintf(stderr, "skill %q failed audit after %s of %s: %v", skill, payload.ToolName, payload.ToolInput.Path(), report.Err())
		fmt.Fprintln(stderr, "Fix these problems before continuing.")

		log.WithField("findings", len(report.Failing())).Info("skill failed audit")
		return &exitError{code: exitBlock, err: errReported}
	},
}

func init() {
	hookPostToolUseCmd.Flags().Bool("strict", false, "Fail on warnings as well as errors")
	hookCmd.AddCommand(hookPostToolUseCmd)
	rootCmd.AddCommand(hookCmd)
}
