package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jingkaihe/skillctl/pkg/docs"
	"github.com/jingkaihe/skillctl/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// DocsReferenceConfig holds configuration for the docs reference command
type DocsReferenceConfig struct {
	Output  string
	Check   bool
	Preview bool
	Width   int
}

// NewDocsReferenceConfig creates a new DocsReferenceConfig with default values
func NewDocsReferenceConfig() *DocsReferenceConfig {
	return &DocsReferenceConfig{
		Output:  "",
		Check:   false,
		Preview: false,
		Width:   80,
	}
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate documentation from the skills",
	Long: `Generate the skills table embedded in the project document and the standalone
skills reference. Both are pure functions of the skill files, so regenerating
unchanged skills produces identical output.`,
	RunE: groupRunE,
}

var docsReferenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Generate the skills reference document",
	Long: `Generate the skills reference document, one section per skill.

Examples:
  skillctl docs reference
  skillctl docs reference -o -
  skillctl docs reference --check
  skillctl docs reference --preview`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getDocsReferenceConfigFromFlags(cmd)
		if config.Check && config.Preview {
			return usageError(errors.New("--check and --preview cannot be combined"))
		}
		if config.Check && config.Output == "-" {
			return usageError(errors.New("--check needs an output file, not stdout"))
		}
		return runDocsReference(cmd.Context(), config)
	},
}

var docsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Update the skills table and the reference document",
	Long: `Replace the skills table between the marker comments of the project document
and rewrite the reference document. The project document must already contain
both markers.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDocsRefresh(cmd.Context())
	},
}

var docsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Fail when the generated documentation is stale",
	Long:  `Compare the project document table and the reference document with freshly generated output and print a diff for each stale file.`,
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDocsCheck(cmd.Context())
	},
}

func init() {
	defaults := NewDocsReferenceConfig()
	docsReferenceCmd.Flags().StringP("output", "o", defaults.Output, "Output file, - for stdout (default from reference_doc)")
	docsReferenceCmd.Flags().Bool("check", defaults.Check, "Only report whether the output file is up to date")
	docsReferenceCmd.Flags().Bool("preview", defaults.Preview, "Render the document in the terminal instead of writing it")
	docsReferenceCmd.Flags().Int("width", defaults.Width, "Word wrap width for --preview")

	docsCmd.AddCommand(docsReferenceCmd)
	docsCmd.AddCommand(docsRefreshCmd)
	docsCmd.AddCommand(docsCheckCmd)
	rootCmd.AddCommand(docsCmd)
}

func getDocsReferenceConfigFromFlags(cmd *cobra.Command) *DocsReferenceConfig {
	config := NewDocsReferenceConfig()
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if check, err := cmd.Flags().GetBool("check"); err == nil {
		config.Check = check
	}
	if preview, err := cmd.Flags().GetBool("preview"); err == nil {
		config.Preview = preview
	}
	if width, err := cmd.Flags().GetInt("width"); err == nil {
		config.Width = width
	}
	if config.Output == "" {
		config.Output = cfg.ReferenceDoc
	}
	return config
}

func runDocsReference(ctx context.Context, config *DocsReferenceConfig) error {
	_, all, err := loadSkills(ctx)
	if err != nil {
		return err
	}
	content := docs.Reference(all)

	switch {
	case config.Preview:
		rendered, err := docs.Render(content, config.Width)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, rendered)
		return nil

	case config.Output == "-":
		fmt.Fprint(os.Stdout, content)
		return nil

	case config.Check:
		diff, err := docs.CheckFile(config.Output, content)
		if err != nil {
			return err
		}
		return reportStale(docCheck{path: config.Output, diff: diff})
	}

	changed, err := docs.WriteFile(config.Output, content)
	if err != nil {
		return err
	}
	reportWrite(config.Output, changed)
	return nil
}

func runDocsRefresh(ctx context.Context) error {
	_, all, err := loadSkills(ctx)
	if err != nil {
		return err
	}

	changed, err := docs.SpliceFile(cfg.ProjectDoc, docs.Table(all), cfg.DocMarkers())
	if err != nil {
		return err
	}
	reportWrite(cfg.ProjectDoc, changed)

	changed, err = docs.WriteFile(cfg.ReferenceDoc, docs.Reference(all))
	if err != nil {
		return err
	}
	reportWrite(cfg.ReferenceDoc, changed)
	return nil
}

func runDocsCheck(ctx context.Context) error {
	_, all, err := loadSkills(ctx)
	if err != nil {
		return err
	}

	tableDiff, err := docs.CheckSplice(cfg.ProjectDoc, docs.Table(all), cfg.DocMarkers())
	if err != nil {
		return err
	}
	referenceDiff, err := docs.CheckFile(cfg.ReferenceDoc, docs.Reference(all))
	if err != nil {
		return err
	}

	return reportStale(
		docCheck{path: cfg.ProjectDoc, diff: tableDiff},
		docCheck{path: cfg.ReferenceDoc, diff: referenceDiff},
	)
}

type docCheck struct {
	path string
	diff string
}

// reportStale prints the non-empty diffs and fails when there is any.
func reportStale(checks ...docCheck) error {
	stale := false
	for _, c := range checks {
		if c.diff == "" {
			continue
		}
		stale = true
		presenter.Failure(fmt.Sprintf("%s is out of date", c.path))
		fmt.Fprint(os.Stdout, c.diff)
	}

	if stale {
		presenter.Info("Run 'skillctl docs refresh' to update the generated documentation")
		return errReported
	}
	presenter.Success("Generated documentation is up to date")
	return nil
}

func reportWrite(path string, changed bool) {
	if changed {
		presenter.Success(fmt.Sprintf("Updated %s", path))
	} else {
		presenter.Info(fmt.Sprintf("%s is up to date", path))
	}
}
