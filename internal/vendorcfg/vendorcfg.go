// Package vendorcfg invokes the vendor's out-of-band configuration utility
// as a subprocess to export BIOS/BMC configuration. Only the invocation is
// modeled here; the utility's output feeds the biosdiff engine.
package vendorcfg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const defaultTimeout = 2 * time.Minute

// Tool runs one external configuration utility binary.
type Tool struct {
	path    string
	timeout time.Duration
}

// New creates a runner for the utility at path.
func New(path string) *Tool {
	return &Tool{path: path, timeout: defaultTimeout}
}

// Run executes the utility against one BMC and returns its stdout. The
// utility takes the BMC address and credentials as flags followed by a
// command name. Credentials never appear in errors.
func (t *Tool) Run(ctx context.Context, host, username, password string, command ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	args := []string{"-i", host, "-u", username, "-p", password, "-c"}
	args = append(args, command...)

	cmd := exec.CommandContext(ctx, t.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %v on %s: %w (stderr: %s)", t.path, command, host, err, stderr.String())
	}

	return stdout.String(), nil
}

// ExportBIOSConfig fetches the current BIOS configuration export.
func (t *Tool) ExportBIOSConfig(ctx context.Context, host, username, password string) (string, error) {
	out, err := t.Run(ctx, host, username, password, "GetCurrentBiosCfg")
	if err != nil {
		return "", fmt.Errorf("exporting BIOS config: %w", err)
	}
	return out, nil
}

// ExportBMCConfig fetches the current BMC configuration export.
func (t *Tool) ExportBMCConfig(ctx context.Context, host, username, password string) (string, error) {
	out, err := t.Run(ctx, host, username, password, "GetBmcCfg")
	if err != nil {
		return "", fmt.Errorf("exporting BMC config: %w", err)
	}
	return out, nil
}
