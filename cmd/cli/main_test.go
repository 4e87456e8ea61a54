package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
)

func TestPulseCommand_ExplicitBadDaysFlag(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"pulse", "octocat", "hello-world", "--days", "-5"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidWindow(err))
	assert.Contains(t, err.Error(), "-5")
}
