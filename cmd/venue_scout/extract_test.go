package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCommandRegistered(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "extract" {
			found = true
		}
	}
	assert.True(t, found, "extract command should be registered on the root command")
}

func TestExtractCommandFlags(t *testing.T) {
	flags := extractCommand.Flags()

	for _, name := range []string{"config", "url", "kind", "session-file", "workers", "headless", "verbose", "api-key"} {
		require.NotNil(t, flags.Lookup(name), "missing flag %q", name)
	}

	assert.Equal(t, "profile", flags.Lookup("kind").DefValue)
	assert.Equal(t, "true", flags.Lookup("headless").DefValue)
}

func TestExtractRequiresURL(t *testing.T) {
	extractURL = ""
	err := runExtractCmd(extractCommand, nil)
	assert.ErrorContains(t, err, "--url is required")
}

func TestExtractRejectsUnknownKind(t *testing.T) {
	extractURL = "https://facebook.com/somevenue"
	extractKind = "page"
	t.Cleanup(func() {
		extractURL = ""
		extractKind = "profile"
	})

	err := runExtractCmd(extractCommand, nil)
	assert.ErrorContains(t, err, "invalid --kind")
}
