package handoff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgvShape(t *testing.T) {
	p := &ServerProcess{
		Command:         "/usr/local/bin/autobus",
		Bind:            "0.0.0.0:3090",
		Workers:         4,
		GracefulTimeout: 30,
		AccessLog:       "-",
		ErrorLog:        "-",
	}

	assert.Equal(t, []string{
		"/usr/local/bin/autobus",
		"serve",
		"--bind", "0.0.0.0:3090",
		"--workers", "4",
		"--graceful-timeout", "30",
		"--access-log", "-",
		"--error-log", "-",
	}, p.Argv())
}

func TestExecReplacesProcessImage(t *testing.T) {
	var gotArgv0 string
	var gotArgv []string
	p := &ServerProcess{
		Bind:            "0.0.0.0:3090",
		Workers:         4,
		GracefulTimeout: 30,
		AccessLog:       "-",
		ErrorLog:        "-",
		execFn: func(argv0 string, argv []string, envv []string) error {
			gotArgv0 = argv0
			gotArgv = argv
			return nil
		},
	}

	require.NoError(t, p.Exec())
	assert.NotEmpty(t, gotArgv0, "empty command resolves to the current binary")
	assert.Equal(t, gotArgv0, gotArgv[0])
	assert.Equal(t, "serve", gotArgv[1])
}

func TestExecSurfacesFailure(t *testing.T) {
	cause := errors.New("exec format error")
	p := &ServerProcess{
		execFn: func(argv0 string, argv []string, envv []string) error { return cause },
	}

	err := p.Exec()
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
}

func TestExecRejectsMissingCommand(t *testing.T) {
	p := &ServerProcess{Command: "definitely-not-a-real-binary-name"}
	require.Error(t, p.Exec())
}
