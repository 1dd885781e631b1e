package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "1.2.3"
	defer func() { version = originalVersion }()

	out, err := run(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "docucortex version 1.2.3")
}

func TestVersionCmd_DoesNotBootstrap(t *testing.T) {
	resetApp()
	called := false
	bootstrap = func(ctx context.Context) (*App, error) {
		called = true
		return nil, errors.New("no config")
	}
	defer func() { bootstrap = nil; resetApp() }()

	_, err := run(t, "version")

	assert.NoError(t, err)
	assert.False(t, called)
}
