// Package plugins runs external wflogger-<command> binaries for commands
// the CLI does not know, the way git and kubectl do.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "wflogger-"

// EnvPluginDir overrides the per-user plugin directory.
const EnvPluginDir = "WFLOGGER_PLUGIN_DIR"

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// UserDir returns the per-user plugin directory: $WFLOGGER_PLUGIN_DIR if
// set, otherwise <user config dir>/wflogger/plugins.
func UserDir() string {
	if dir := os.Getenv(EnvPluginDir); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "wflogger", "plugins")
	}
	return ""
}

// FindPlugin searches for a plugin binary named wflogger-<command>.
// It searches in the following locations in order:
//  1. Same directory as the wflogger binary
//  2. UserDir()
//  3. Anywhere in PATH
func FindPlugin(command string) (string, error) {
	pluginName := Prefix + command

	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if dir := UserDir(); dir != "" {
		dirs = append(dirs, dir)
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, pluginName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(pluginName); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments on the caller's stdio
// and returns the plugin's exit code.
func Execute(ctx context.Context, pluginPath string, args []string) int {
	cmd := exec.CommandContext(ctx, pluginPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 1
	}

	return 0
}

// FormatNotFoundError returns the message shown for an unknown command,
// listing where a plugin of that name would be picked up from.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"wflogger\"\n", command)
	sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	fmt.Fprintf(&sb, "  - %s%s in the same directory as wflogger\n", Prefix, command)
	if dir := UserDir(); dir != "" {
		fmt.Fprintf(&sb, "  - %s\n", filepath.Join(dir, Prefix+command))
	}
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)
	sb.WriteString("\nRun 'wflogger --help' for usage.")

	return sb.String()
}

// isExecutable reports whether path is a regular file with an execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
