// Package avm locates the anchor-cli binary selected by the version manager
// and runs it.
package avm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// EnvHome overrides the default home directory.
	EnvHome = "AVM_HOME"

	defaultHomeDir  = ".avm"
	versionFileName = ".version"
	binDir          = "bin"
	binaryPrefix    = "anchor-"
)

var (
	ErrConfiguration = errors.New("anchor version not set")
	ErrNotInstalled  = errors.New("anchor-cli not installed")
)

// NotInstalledError reports a selected version whose binary is missing.
type NotInstalledError struct {
	Version string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("anchor-cli %s not installed", e.Version)
}

func (e *NotInstalledError) Unwrap() error {
	return ErrNotInstalled
}

// Remedy returns the command that fixes err, or "" when there is none.
func Remedy(err error) string {
	var notInstalled *NotInstalledError
	switch {
	case errors.As(err, &notInstalled):
		return fmt.Sprintf("Please run `avm use %s`.", notInstalled.Version)
	case errors.Is(err, ErrConfiguration):
		return "Please run `avm use latest`."
	}
	return ""
}

// Home returns $AVM_HOME, or ~/.avm when unset.
func Home() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(userHome, defaultHomeDir), nil
}

// CurrentVersion returns the version recorded by the last `avm use`.
func CurrentVersion(home string) (string, error) {
	data, err := os.ReadFile(filepath.Join(home, versionFileName))
	if err != nil {
		return "", ErrConfiguration
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", ErrConfiguration
	}
	return version, nil
}

func VersionBinaryPath(home, version string) string {
	return filepath.Join(home, binDir, binaryPrefix+version)
}

// IO is the standard streams handed to the launched binary.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Launch runs the current version's binary with args and returns its exit
// code. The error is non-nil only when the binary could not be run.
func Launch(ctx context.Context, log *slog.Logger, home string, args []string, stdio IO) (int, error) {
	version, err := CurrentVersion(home)
	if err != nil {
		return 1, err
	}
	path := VersionBinaryPath(home, version)
	if _, err := os.Stat(path); err != nil {
		return 1, &NotInstalledError{Version: version}
	}

	log.Debug("Launching anchor-cli", "version", version, "path", path, "args", args)
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				// Terminated by a signal.
				code = 1
			}
			log.Debug("anchor-cli exited", "version", version, "code", code)
			return code, nil
		}
		return 1, fmt.Errorf("failed to run anchor-cli %s: %w", version, err)
	}
	return 0, nil
}
