package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"plain failure", errors.New("boom"), 1},
		{"reported failure", errReported, 1},
		{"usage error", usageError(errors.New("accepts 1 arg(s), received 0")), 2},
		{"wrapped usage error", errors.Wrap(usageError(errors.New("bad flag")), "context"), 2},
		{"blocking hook feedback", &exitError{code: exitBlock, err: errReported}, 2},
		{"unknown root command", errors.New(`unknown command "bogus" for "skillctl"`), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestUsageArgs(t *testing.T) {
	validate := usageArgs(cobra.ExactArgs(1))

	assert.NoError(t, validate(&cobra.Command{}, []string{"a"}))

	err := validate(&cobra.Command{}, nil)
	assert.Equal(t, exitUsage, exitCode(err))
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestGroupRunE(t *testing.T) {
	err := groupRunE(docsCmd, []string{"bogus"})
	assert.Equal(t, exitUsage, exitCode(err))
	assert.Contains(t, err.Error(), `unknown command "bogus" for "skillctl docs"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "two lines", truncate("two\n  lines", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
