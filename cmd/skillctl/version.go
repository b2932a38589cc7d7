package main

import (
	"fmt"

	"github.com/jingkaihe/skillctl/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of skillctl in JSON format.`,
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(info.String())
			return nil
		}

		json, err := info.JSON()
		if err != nil {
			return err
		}
		fmt.Println(json)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print a single line")
	rootCmd.AddCommand(versionCmd)
}
