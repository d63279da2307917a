package plugins

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindPlugin_NotFound(t *testing.T) {
	t.Setenv(EnvPluginDir, t.TempDir())

	_, err := FindPlugin("nonexistent-plugin-xyz")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestFindPlugin_InPluginsDir(t *testing.T) {
	pluginsDir := t.TempDir()
	t.Setenv(EnvPluginDir, pluginsDir)

	pluginPath := filepath.Join(pluginsDir, "wflogger-testplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\necho test"), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	found, err := FindPlugin("testplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestFindPlugin_SkipsNonExecutable(t *testing.T) {
	pluginsDir := t.TempDir()
	t.Setenv(EnvPluginDir, pluginsDir)

	if err := os.WriteFile(filepath.Join(pluginsDir, "wflogger-plain"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := FindPlugin("plain"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestExecute_ExitCode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "wflogger-exit")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if code := Execute(context.Background(), script, nil); code != 3 {
		t.Errorf("Execute() = %d, want 3", code)
	}
}

func TestUserDir(t *testing.T) {
	t.Setenv(EnvPluginDir, "/opt/wflogger/plugins")
	if got := UserDir(); got != "/opt/wflogger/plugins" {
		t.Errorf("UserDir() = %s, want override", got)
	}

	t.Setenv(EnvPluginDir, "")
	if got := UserDir(); got != "" && !strings.HasSuffix(got, filepath.Join("wflogger", "plugins")) {
		t.Errorf("UserDir() = %s, want .../wflogger/plugins", got)
	}
}

func TestFormatNotFoundError(t *testing.T) {
	t.Setenv(EnvPluginDir, "/opt/wflogger/plugins")
	msg := FormatNotFoundError("report")

	for _, want := range []string{
		`unknown command "report"`,
		"wflogger-report in the same directory",
		"/opt/wflogger/plugins/wflogger-report",
		"wflogger-report anywhere in your PATH",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected message to contain %q:\n%s", want, msg)
		}
	}
}

func TestIsExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	nonExec := filepath.Join(tmpDir, "nonexec")
	if err := os.WriteFile(nonExec, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if isExecutable(nonExec) {
		t.Error("non-executable file should not be detected as executable")
	}

	exec := filepath.Join(tmpDir, "exec")
	if err := os.WriteFile(exec, []byte("test"), 0755); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if !isExecutable(exec) {
		t.Error("executable file should be detected as executable")
	}

	if isExecutable(tmpDir) {
		t.Error("directory should not be detected as executable")
	}
	if isExecutable(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("non-existent file should not be detected as executable")
	}
}
