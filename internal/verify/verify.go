// Package verify implements the deployment preflight.
//
// Verification is the one startup path where failures are fatal: a
// deployment with a missing tool, a missing .env or debug mode enabled
// must not proceed. Dependency readiness is deliberately out of scope
// here; that is the orchestrator's best-effort territory.
package verify

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/autobus-platform/autobus/internal/cli/prompt"
	"github.com/autobus-platform/autobus/internal/config"
	"github.com/autobus-platform/autobus/internal/logger"
)

// Common errors for deployment verification.
var (
	ErrPrerequisiteMissing  = errors.New("prerequisite missing")
	ErrConfigurationInvalid = errors.New("configuration invalid")
	ErrDeclined             = errors.New("deployment declined")
)

// RequiredTools are the executables a deployment host must provide.
var RequiredTools = []string{"docker", "docker-compose"}

// Options controls a verification run.
type Options struct {
	// EnvFile is the dotenv file to verify. Default ".env".
	EnvFile string

	// Tools overrides RequiredTools. Nil means the default set.
	Tools []string

	// Confirm is the operator prompt used when the secret key is the
	// known default. Nil means an interactive promptui confirm.
	Confirm func(label string) (bool, error)

	// LookPath resolves tools. Nil means exec.LookPath.
	LookPath func(name string) (string, error)
}

// Run performs the deployment preflight. Any returned error means the
// deployment must not proceed.
func Run(opts Options) error {
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}
	tools := opts.Tools
	if tools == nil {
		tools = RequiredTools
	}
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	confirm := opts.Confirm
	if confirm == nil {
		confirm = func(label string) (bool, error) { return prompt.Confirm(label, false) }
	}

	for _, tool := range tools {
		if _, err := lookPath(tool); err != nil {
			return fmt.Errorf("%w: %s not found on PATH", ErrPrerequisiteMissing, tool)
		}
		logger.Debug("tool found", "tool", tool)
	}

	if _, err := os.Stat(opts.EnvFile); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPrerequisiteMissing, opts.EnvFile, err)
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigurationInvalid, err)
	}

	if cfg.Debug {
		return fmt.Errorf("%w: DEBUG must be \"false\" for deployment", ErrConfigurationInvalid)
	}

	if cfg.SecretKey == config.DefaultSecretKey {
		logger.Warn("SECRET_KEY is still the known default value")
		ok, err := confirm("SECRET_KEY is the default value. Continue anyway?")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDeclined, err)
		}
		if !ok {
			return ErrDeclined
		}
	}

	logger.Info("deployment verification passed", "env_file", opts.EnvFile)
	return nil
}
