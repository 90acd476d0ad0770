package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SetKeyInFile sets a global option in the config file at path, keeping
// comments and sections intact. An existing global line for key is
// replaced in place; otherwise the line goes before the first [section]
// header, or at the end. Keys inside sections are never touched.
func SetKeyInFile(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}
	entry := strings.TrimSpace(key + " " + value)

	insertAt := -1
	replaced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			insertAt = i
			break
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if name, _, _ := strings.Cut(trimmed, " "); name == key {
			lines[i] = entry
			replaced = true
			break
		}
	}

	switch {
	case replaced:
	case insertAt >= 0:
		lines = append(lines[:insertAt], append([]string{entry}, lines[insertAt:]...)...)
	case len(lines) > 0 && lines[len(lines)-1] == "":
		lines = append(lines[:len(lines)-1], entry, "")
	default:
		lines = append(lines, entry)
	}

	return writeFileAtomic(path, []byte(strings.Join(lines, "\n")), 0o644)
}

// DefaultFileContent renders a commented config file listing every option
// of s at its default.
func DefaultFileContent(s *ConfigSchema) string {
	var b strings.Builder
	b.WriteString("# one-shot-planner configuration\n")
	b.WriteString("# Format: optionName value\n")
	for _, o := range s.GlobalOptions() {
		writeDefaultLine(&b, o)
	}
	for _, sec := range s.Sections() {
		fmt.Fprintf(&b, "\n[%s]\n", sec)
		for _, o := range s.SectionOptions(sec) {
			writeDefaultLine(&b, o)
		}
	}
	return b.String()
}

func writeDefaultLine(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "\n# %s\n", o.Description)
	if o.Default == "" {
		fmt.Fprintf(b, "# %s\n", o.Key)
		return
	}
	fmt.Fprintf(b, "%s %s\n", o.Key, o.Default)
}

// WriteDefault writes DefaultFileContent(DefaultSchema()) to path. An
// existing file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Lstat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	return writeFileAtomic(path, []byte(DefaultFileContent(DefaultSchema())), 0o644)
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
