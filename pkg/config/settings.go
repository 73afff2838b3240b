package config

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPasswordMinLength      = 8
	DefaultEmailMaxLength         = 256
	DefaultEmailLocalMaxLength    = 64
	DefaultDelayedRequest         = 5 * time.Second
	DefaultProgressIndicatorDelay = 100 * time.Millisecond
	DefaultTooltipFade            = 150 * time.Millisecond
	DefaultLocale                 = "en"
	DefaultExcludedGroup          = "age-gate"
)

// Settings is the process-wide configuration object. It is built once at
// startup (Default, Load or LoadFile) and passed explicitly to the packages
// that need it; nothing in this module reads it from global state.
type Settings struct {
	Locale        string   `yaml:"locale"`
	ExcludedGroup string   `yaml:"excludedGroup"`
	Password      Password `yaml:"password"`
	Email         Email    `yaml:"email"`
	Timing        Timing   `yaml:"timing"`
	Tooltip       Tooltip  `yaml:"tooltip"`
	Messages      string   `yaml:"messages"`
}

// Password configures the password rule.
type Password struct {
	MinLength int `yaml:"minLength"`
}

// Email configures the email rule limits.
type Email struct {
	MaxLength      int `yaml:"maxLength"`
	LocalMaxLength int `yaml:"localMaxLength"`
}

// Timing holds the cosmetic delays used by submission instrumentation and
// tooltip animation.
type Timing struct {
	DelayedRequest         time.Duration `yaml:"delayedRequest"`
	ProgressIndicatorDelay time.Duration `yaml:"progressIndicatorDelay"`
	TooltipFade            time.Duration `yaml:"tooltipFade"`
}

// Tooltip configures tooltip rendering. Template names a template inside
// TemplateDir; Theme and Variant select from the manifests in the Themes file.
type Tooltip struct {
	Template    string `yaml:"template"`
	TemplateDir string `yaml:"templateDir"`
	Themes      string `yaml:"themes"`
	Theme       string `yaml:"theme"`
	Variant     string `yaml:"variant"`
}

// Default returns settings populated with the built-in defaults.
func Default() Settings {
	s := Settings{}
	s.applyDefaults()
	return s
}

// Load parses YAML settings, filling any zero value with its default.
func Load(data []byte) (Settings, error) {
	var s Settings
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("config: parse settings: %w", err)
		}
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadFile reads settings from disk.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(data)
}

// LoadFS reads settings from a filesystem entry.
func LoadFS(fsys fs.FS, path string) (Settings, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(data)
}

// Validate reports settings that cannot be used.
func (s Settings) Validate() error {
	if s.Password.MinLength < 1 {
		return fmt.Errorf("config: password.minLength must be positive, got %d", s.Password.MinLength)
	}
	if s.Email.LocalMaxLength > s.Email.MaxLength {
		return fmt.Errorf("config: email.localMaxLength (%d) exceeds email.maxLength (%d)", s.Email.LocalMaxLength, s.Email.MaxLength)
	}
	if s.Timing.DelayedRequest < 0 || s.Timing.ProgressIndicatorDelay < 0 || s.Timing.TooltipFade < 0 {
		return fmt.Errorf("config: timing values must not be negative")
	}
	if s.Tooltip.Template != "" && s.Tooltip.TemplateDir == "" {
		return fmt.Errorf("config: tooltip.template %q requires tooltip.templateDir", s.Tooltip.Template)
	}
	if (s.Tooltip.Theme != "" || s.Tooltip.Variant != "") && s.Tooltip.Themes == "" {
		return fmt.Errorf("config: tooltip.theme requires tooltip.themes")
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if strings.TrimSpace(s.Locale) == "" {
		s.Locale = DefaultLocale
	}
	if strings.TrimSpace(s.ExcludedGroup) == "" {
		s.ExcludedGroup = DefaultExcludedGroup
	}
	if s.Password.MinLength == 0 {
		s.Password.MinLength = DefaultPasswordMinLength
	}
	if s.Email.MaxLength == 0 {
		s.Email.MaxLength = DefaultEmailMaxLength
	}
	if s.Email.LocalMaxLength == 0 {
		s.Email.LocalMaxLength = DefaultEmailLocalMaxLength
	}
	if s.Timing.DelayedRequest == 0 {
		s.Timing.DelayedRequest = DefaultDelayedRequest
	}
	if s.Timing.ProgressIndicatorDelay == 0 {
		s.Timing.ProgressIndicatorDelay = DefaultProgressIndicatorDelay
	}
	if s.Timing.TooltipFade == 0 {
		s.Timing.TooltipFade = DefaultTooltipFade
	}
}
