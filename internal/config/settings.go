package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	settingsFile = "settings.json"
	templateFile = "markdown.md"
)

// DefaultTemplate seeds markdown.md and backs LoadTemplate when the file is
// missing or blank.
const DefaultTemplate = `# AI Prompt

## Role / Persona
You are a helpful AI assistant.

## Context
Provide relevant background information here.

## Task / Instructions
Describe what you want the AI to do.

## Input
` + "```" + `
[Your input data here]
` + "```" + `

## Output Format
Describe the expected output format (e.g., JSON, markdown, bullet points).

## Constraints
- Constraint 1
- Constraint 2

## Examples (Optional)

### Example Input
` + "```" + `
[Example input]
` + "```" + `

### Example Output
` + "```" + `
[Example output]
` + "```" + `

---

## Notes
Additional notes or considerations.
`

// Settings is the persisted user configuration.
type Settings struct {
	MarkdownRootPath string `json:"MarkdownRootPath"`
}

// AppData is the per-user directory holding settings.json and markdown.md.
type AppData struct {
	Dir string
}

func (a AppData) SettingsPath() string { return filepath.Join(a.Dir, settingsFile) }
func (a AppData) TemplatePath() string { return filepath.Join(a.Dir, templateFile) }

// Defaults returns settings rooted at the data directory itself.
func (a AppData) Defaults() Settings {
	return Settings{MarkdownRootPath: a.Dir}
}

// EnsureFiles creates the data directory, a default settings.json and the
// default template when they do not exist. Existing files are left alone.
func (a AppData) EnsureFiles() error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if _, err := os.Stat(a.SettingsPath()); errors.Is(err, fs.ErrNotExist) {
		if err := a.writeSettings(a.Defaults()); err != nil {
			return err
		}
	}

	if _, err := os.Stat(a.TemplatePath()); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(a.TemplatePath(), []byte(DefaultTemplate), 0o644); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
	}
	return nil
}

// LoadSettings reads settings.json. A missing, unreadable or blank file yields
// the defaults; environment variables in the root path are expanded.
func (a AppData) LoadSettings() (Settings, error) {
	if err := a.EnsureFiles(); err != nil {
		return a.Defaults(), err
	}

	data, err := os.ReadFile(a.SettingsPath())
	if err != nil {
		return a.Defaults(), nil
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil || strings.TrimSpace(s.MarkdownRootPath) == "" {
		return a.Defaults(), nil
	}
	s.MarkdownRootPath = ExpandPath(s.MarkdownRootPath)
	return s, nil
}

// SaveSettings persists s. A blank root path is replaced by the data directory.
func (a AppData) SaveSettings(s Settings) error {
	if err := a.EnsureFiles(); err != nil {
		return err
	}
	if strings.TrimSpace(s.MarkdownRootPath) == "" {
		s.MarkdownRootPath = a.Dir
	}
	return a.writeSettings(s)
}

// LoadTemplate returns the new-note template, or DefaultTemplate when the
// file is missing or blank.
func (a AppData) LoadTemplate() string {
	if err := a.EnsureFiles(); err != nil {
		return DefaultTemplate
	}
	data, err := os.ReadFile(a.TemplatePath())
	if err != nil || strings.TrimSpace(string(data)) == "" {
		return DefaultTemplate
	}
	return string(data)
}

func (a AppData) writeSettings(s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(a.SettingsPath(), data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// ExpandPath trims p and expands $VAR and ${VAR} references.
func ExpandPath(p string) string {
	return os.ExpandEnv(strings.TrimSpace(p))
}
