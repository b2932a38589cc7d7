package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jingkaihe/skillctl/pkg/config"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/jingkaihe/skillctl/pkg/presenter"
	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	v   = config.New()
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "skillctl",
	Short: "Audit and document Claude Code skills",
	Long: `skillctl keeps a project's Claude Code skills healthy. Each skill lives in its
own directory with a thin SKILL.md pointer and the rules.yaml,
collaboration.yaml and pitfalls.yaml documents its kind requires.

It audits skills against that convention, generates the skills table and
reference documentation, scaffolds new skills, and re-audits skills as the
assistant edits them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

func init() {
	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./.skillctl.yaml, then ~/.skillctl/config.yaml)")
	flags.String("skills-dir", defaults.SkillsDir, "Directory holding one sub-directory per skill")
	flags.String("log-level", defaults.LogLevel, "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", defaults.LogFormat, "Log format (text or json)")
	flags.BoolP("quiet", "q", false, "Only print failures")

	bindFlags(v, flags, map[string]string{
		"skills_dir": "skills-dir",
		"log_level":  "log-level",
		"log_format": "log-format",
	})

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(errors.Wrapf(err, "failed to bind flag %s", name))
		}
	}
}

// initConfig resolves the configuration once flags are parsed.
func initConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	used, err := config.ReadInConfig(v, path)
	if err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	cfg = loaded

	if err := logger.Configure(cfg.LoggerOptions()); err != nil {
		return err
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		presenter.SetQuiet(true)
	}

	log := logger.G(cmd.Context()).WithField("command", cmd.CommandPath())
	if used != "" {
		log = log.WithField("config_file", used)
	}
	log.WithField("skills_dir", cfg.SkillsDir).Debug("configuration loaded")
	cmd.SetContext(logger.WithLogger(cmd.Context(), log))

	return nil
}

// newDiscovery builds a skill discovery from the resolved configuration.
func newDiscovery() (*skills.Discovery, error) {
	return skills.NewDiscovery(cfg.DiscoveryOptions()...)
}

// loadSkills discovers every skill.
func loadSkills(ctx context.Context) (*skills.Discovery, []*skills.Skill, error) {
	discovery, err := newDiscovery()
	if err != nil {
		return nil, nil, err
	}
	all, err := discovery.Discover(ctx)
	if err != nil {
		return nil, nil, err
	}
	return discovery, all, nil
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		presenter.Error(err, "")
	}
	return exitCode(err)
}

func main() {
	os.Exit(run())
}
