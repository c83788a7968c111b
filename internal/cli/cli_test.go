package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/formcalc/internal/app"
)

func TestParse_Defaults(t *testing.T) {
	cfg, exit, err := Parse([]string{"form.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, []string{"form.hcl"}, cfg.FormPaths)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Interactions)
}

func TestParse_AllFlags(t *testing.T) {
	cfg, exit, err := Parse([]string{
		"--form", "a.hcl",
		"-f", "b.hcl",
		"--set", "qty=3",
		"--set", "size=12",
		"--relay-url", "http://localhost:3000/socket.io/",
		"--relay-namespace", "/preview",
		"--relay-event", "calc",
		"--relay-insecure",
		"--log-format", "JSON",
		"--log-level", "Debug",
		"c.hcl",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, []string{"a.hcl", "b.hcl", "c.hcl"}, cfg.FormPaths)
	assert.Equal(t, []app.Interaction{{Name: "qty", Value: "3"}, {Name: "size", Value: "12"}}, cfg.Interactions)
	assert.Equal(t, "http://localhost:3000/socket.io/", cfg.RelayURL)
	assert.Equal(t, "/preview", cfg.RelayNamespace)
	assert.Equal(t, "calc", cfg.RelayEvent)
	assert.True(t, cfg.RelayInsecure)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown flag", []string{"--nope"}, "flag provided but not defined"},
		{"bad interaction", []string{"--set", "qty", "f.hcl"}, "expected name=value"},
		{"bad log format", []string{"--log-format", "xml", "f.hcl"}, "invalid log-format"},
		{"bad log level", []string{"--log-level", "trace", "f.hcl"}, "invalid log-level"},
		{"relay event without url", []string{"--relay-event", "x", "f.hcl"}, "relay URL"},
		{"relay insecure without url", []string{"--relay-insecure", "f.hcl"}, "relay URL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.msg)
		})
	}
}

func TestParse_EnvironmentDefaults(t *testing.T) {
	t.Setenv("FORMCALC_LOG_LEVEL", "debug")
	t.Setenv("FORMCALC_RELAY_URL", "http://localhost:3000")

	cfg, _, err := Parse([]string{"f.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://localhost:3000", cfg.RelayURL)
	assert.False(t, cfg.RelayInsecure)

	cfg, _, err = Parse([]string{"--log-level", "error", "f.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel, "flags win over the environment")
}

func TestParse_RelayInsecureFromEnvironment(t *testing.T) {
	t.Setenv("FORMCALC_RELAY_URL", "https://localhost:3000")
	t.Setenv("FORMCALC_RELAY_INSECURE", "true")

	cfg, _, err := Parse([]string{"f.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, cfg.RelayInsecure)

	cfg, _, err = Parse([]string{"--relay-insecure=false", "f.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, cfg.RelayInsecure)
}
