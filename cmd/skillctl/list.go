package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jingkaihe/skillctl/pkg/presenter"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ListConfig holds configuration for the list command
type ListConfig struct {
	JSON bool
}

// NewListConfig creates a new ListConfig with default values
func NewListConfig() *ListConfig {
	return &ListConfig{JSON: false}
}

type skillSummary struct {
	Name        string      `json:"name"`
	Directory   string      `json:"directory"`
	Kind        skills.Kind `json:"kind"`
	Invocable   bool        `json:"invocable"`
	Description string      `json:"description"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills",
	Long:  `List every skill in the skills directory with its kind, invocability and description.`,
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getListConfigFromFlags(cmd)

		_, all, err := loadSkills(cmd.Context())
		if err != nil {
			return err
		}

		summaries := make([]skillSummary, 0, len(all))
		for _, s := range all {
			summaries = append(summaries, skillSummary{
				Name:        s.Name(),
				Directory:   s.DirName,
				Kind:        s.Kind(),
				Invocable:   s.Invocable(),
				Description: s.Description(),
			})
		}

		if config.JSON {
			return printJSON(summaries)
		}

		if len(summaries) == 0 {
			presenter.Info("No skills found")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tINVOCABLE\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t----\t---------\t-----------")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Directory, s.Kind, yesNo(s.Invocable), truncate(s.Description, 60))
		}
		return tw.Flush()
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().Bool("json", defaults.JSON, "Print skills as JSON")
	rootCmd.AddCommand(listCmd)
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "failed to encode JSON")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
