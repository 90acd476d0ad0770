package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigParsing(t *testing.T) {
	configContent := `# Global options
log.level debug
solve.max-passes 30

[react]
max-ticks 50
log.level warn

[solve]
solve.format json`

	config, err := LoadFromReader(strings.NewReader(configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", config.Warnings)
	}

	if value, ok := config.GetGlobalOption("log.level"); !ok || value != "debug" {
		t.Errorf("Expected log.level=debug, got %s (exists: %v)", value, ok)
	}
	if got := config.GetInt("solve.max-passes"); got != 30 {
		t.Errorf("Expected solve.max-passes=30, got %d", got)
	}
	if value, ok := config.GetCommandOption("react", "max-ticks"); !ok || value != "50" {
		t.Errorf("Expected react.max-ticks=50, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("react", "log.level"); !ok || value != "warn" {
		t.Errorf("Expected section override, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("solve", "log.level"); !ok || value != "debug" {
		t.Errorf("Expected fallback to global, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("nonexistent", "option"); ok {
		t.Errorf("Expected nonexistent option to not exist, but got %s", value)
	}
}

func TestConfigValueIsRestOfLine(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("scenario.dir   /tmp/my scenarios  \nlog.file\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := config.GetString("scenario.dir"); got != "/tmp/my scenarios" {
		t.Errorf("got %q", got)
	}
	if value, ok := config.GetGlobalOption("log.file"); !ok || value != "" {
		t.Errorf("Expected empty log.file to be set, got %q (exists: %v)", value, ok)
	}
}

func TestConfigWarnings(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("bogus 1\nsolve.format xml\n[react]\nmax-ticks many\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", config.Warnings)
	}
	joined := strings.Join(config.Warnings, "\n")
	for _, want := range []string{`"bogus"`, `expected one of text|json, got "xml"`, `expected int, got "many"`} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
}

func TestEmptyConfig(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Failed to load empty config: %v", err)
	}
	if len(config.Global) != 0 || len(config.Commands) != 0 {
		t.Errorf("Expected empty config, got %+v", config)
	}
}

func TestSetGlobalAndCommandOptions(t *testing.T) {
	config := NewConfig()
	config.SetGlobalOption("solve.verify", "yes")
	config.SetCommandOption("react", "max-ticks", "7")

	if !config.GetBool("solve.verify") {
		t.Error("Expected solve.verify to be true")
	}
	if value, ok := config.GetCommandOption("react", "max-ticks"); !ok || value != "7" {
		t.Errorf("Expected react max-ticks=7, got %s", value)
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	config, err := LoadFromPath(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(config.Global) != 0 {
		t.Errorf("expected empty config, got %v", config.Global)
	}
}

func TestLoadFromPathRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	if err := os.WriteFile(target, []byte("log.level debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "config")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := LoadFromPath(link); err == nil || !strings.Contains(err.Error(), "symlink") {
		t.Fatalf("expected symlink error, got %v", err)
	}
}

func TestLoadUsesConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("solve.format json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigEnv, path)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := config.GetString("solve.format"); got != "json" {
		t.Errorf("expected json, got %q", got)
	}
}
