package main

import (
	"os"
	"strings"

	"github.com/jingkaihe/skillctl/pkg/schema"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <document>",
	Short: "Print the JSON Schema of a skill document",
	Long: `Print the JSON Schema of a skill document for editor integration. The
document is one of ` + strings.Join(schema.Documents(), ", ") + `, or the
matching file name (SKILL.md, rules.yaml, ...).`,
	Args:      usageArgs(cobra.ExactArgs(1)),
	ValidArgs: schema.Documents(),
	RunE: func(_ *cobra.Command, args []string) error {
		out, err := schema.For(args[0])
		if errors.Is(err, schema.ErrUnknownDocument) {
			return usageError(errors.Wrapf(err, "expected one of %s", strings.Join(schema.Documents(), ", ")))
		}
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
