package verify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validEnv = `DEBUG=false
SECRET_KEY=a-properly-rotated-production-secret
PGUSER=autobus
PGPASSWORD=secret
PGHOST=db.internal
PGDATABASE=autobus
`

func foundLookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func TestRunPassesWithValidDeployment(t *testing.T) {
	err := Run(Options{
		EnvFile:  writeEnvFile(t, validEnv),
		LookPath: foundLookPath,
		Confirm: func(label string) (bool, error) {
			t.Fatal("confirm must not be called when the secret is not the default")
			return false, nil
		},
	})
	assert.NoError(t, err)
}

func TestRunFailsOnMissingTool(t *testing.T) {
	err := Run(Options{
		EnvFile: writeEnvFile(t, validEnv),
		LookPath: func(name string) (string, error) {
			if name == "docker-compose" {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrerequisiteMissing)
	assert.Contains(t, err.Error(), "docker-compose")
}

func TestRunFailsOnMissingEnvFile(t *testing.T) {
	err := Run(Options{
		EnvFile:  filepath.Join(t.TempDir(), ".env"),
		LookPath: foundLookPath,
	})
	assert.ErrorIs(t, err, ErrPrerequisiteMissing)
}

func TestRunFailsWhenDebugEnabled(t *testing.T) {
	env := `DEBUG=true
SECRET_KEY=a-properly-rotated-production-secret
PGUSER=autobus
PGPASSWORD=secret
PGHOST=db.internal
PGDATABASE=autobus
`
	err := Run(Options{
		EnvFile:  writeEnvFile(t, env),
		LookPath: foundLookPath,
	})
	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestRunDefaultSecretRequiresConfirmation(t *testing.T) {
	env := `DEBUG=false
PGUSER=autobus
PGPASSWORD=secret
PGHOST=db.internal
PGDATABASE=autobus
`
	var prompted bool
	err := Run(Options{
		EnvFile:  writeEnvFile(t, env),
		LookPath: foundLookPath,
		Confirm: func(label string) (bool, error) {
			prompted = true
			return true, nil
		},
	})
	assert.NoError(t, err)
	assert.True(t, prompted)
}

func TestRunDefaultSecretDeclined(t *testing.T) {
	env := `DEBUG=false
PGUSER=autobus
PGPASSWORD=secret
PGHOST=db.internal
PGDATABASE=autobus
`
	err := Run(Options{
		EnvFile:  writeEnvFile(t, env),
		LookPath: foundLookPath,
		Confirm:  func(label string) (bool, error) { return false, nil },
	})
	assert.ErrorIs(t, err, ErrDeclined)
}
