// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package config handles loading and merging fb2gh configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	// Extends allows inheriting from a remote config (e.g., "org/repo@branch").
	Extends string `yaml:"extends,omitempty"`

	// FogBugz configures the source instance.
	FogBugz FogBugzConfig `yaml:"fogbugz"`

	// GitHub configures the target repository.
	GitHub GitHubConfig `yaml:"github"`

	// Migration holds the migration policies.
	Migration MigrationConfig `yaml:"migration"`

	// Attachments configures attachment re-hosting.
	Attachments AttachmentsConfig `yaml:"attachments"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// FogBugzConfig holds FogBugz connection settings.
type FogBugzConfig struct {
	URL                string `yaml:"url"`
	Token              string `yaml:"token,omitempty"`
	Email              string `yaml:"email,omitempty"`
	Password           string `yaml:"password,omitempty"`
	Query              string `yaml:"query,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty"`
}

// GitHubConfig holds GitHub connection settings.
type GitHubConfig struct {
	Token            string `yaml:"token,omitempty"`
	Owner            string `yaml:"owner"`
	Repo             string `yaml:"repo"`
	BaseURL          string `yaml:"base_url,omitempty"`
	NoMilestoneTitle string `yaml:"no_milestone_title,omitempty"`
}

// MigrationConfig holds migration policy settings.
type MigrationConfig struct {
	// Workflow is a preset workflow name (e.g., "full").
	Workflow string `yaml:"workflow,omitempty"`

	// Steps is a custom list of pipeline steps (overrides workflow).
	Steps []string `yaml:"steps,omitempty"`

	// PostDelay is a Go duration ("100ms"); "0" disables the pause.
	PostDelay string `yaml:"post_delay,omitempty"`

	// DateFormat is a Go time layout for event timestamps.
	DateFormat string `yaml:"date_format,omitempty"`

	// Timezone is an IANA zone name for event timestamps.
	Timezone string `yaml:"timezone,omitempty"`

	ImageExtensions []string          `yaml:"image_extensions,omitempty"`
	UsernameMap     map[string]string `yaml:"username_map,omitempty"`
	LabelFields     []string          `yaml:"label_fields,omitempty"`
	LabelColor      string            `yaml:"label_color,omitempty"`

	// CloseIf is one of "closed", "always", "never".
	CloseIf string `yaml:"close_if,omitempty"`

	Include         IncludeConfig `yaml:"include"`
	ContinueOnError bool          `yaml:"continue_on_error,omitempty"`

	// Ledger is a JSON file path or "github:<branch>".
	Ledger string `yaml:"ledger,omitempty"`
}

// IncludeConfig selects the cases to migrate.
type IncludeConfig struct {
	OpenOnly   bool     `yaml:"open_only,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	ExcludeIDs []int    `yaml:"exclude_ids,omitempty"`
}

// AttachmentsConfig holds attachment re-hosting settings.
type AttachmentsConfig struct {
	// Mode is one of "passthrough", "github", "s3".
	Mode           string                  `yaml:"mode,omitempty"`
	MaxSizeMB      int                     `yaml:"max_size_mb,omitempty"`
	SupportedTypes []string                `yaml:"supported_types,omitempty"`
	MaxRetries     int                     `yaml:"max_retries,omitempty"`
	GitHub         GitHubAttachmentsConfig `yaml:"github"`
	S3             S3Config                `yaml:"s3"`
}

// GitHubAttachmentsConfig configures the GitHub branch store.
type GitHubAttachmentsConfig struct {
	Branch string `yaml:"branch,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

// S3Config configures the S3 store.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	PublicURL string `yaml:"public_url,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level    string `yaml:"level,omitempty"`
	Encoding string `yaml:"encoding,omitempty"`
}

// Load reads a config file from the given path and expands environment variables.
// A .env file in the working directory is loaded first; it never overrides
// variables that are already set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// Default returns the configuration used when no file is found: defaults
// plus the environment fallbacks.
func Default() *Config {
	_ = godotenv.Load()
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// parseRaw expands environment variables and decodes YAML without applying
// defaults.
func parseRaw(data []byte) (*Config, error) {
	_ = godotenv.Load()

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadWithInheritance loads a config and resolves the 'extends' chain.
// The fetcher function is used to retrieve remote configs.
func LoadWithInheritance(path string, fetcher func(ref string) ([]byte, error)) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}

	if cfg.Extends != "" {
		// Fetch and parse the parent config
		parentData, err := fetcher(cfg.Extends)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch parent config '%s': %w", cfg.Extends, err)
		}
		parentCfg, err := parseRaw(parentData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse parent config: %w", err)
		}

		// Merge: child overrides parent
		cfg = mergeConfigs(parentCfg, cfg)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	// Search in common locations
	candidates := []string{
		".github/fb2gh.yaml",
		".github/fb2gh.yml",
		".fb2gh.yaml",
		".fb2gh.yml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyEnv fills secrets and the log level from the environment when the
// file leaves them empty.
func (c *Config) applyEnv() {
	if c.FogBugz.Token == "" {
		c.FogBugz.Token = os.Getenv("FOGBUGZ_TOKEN")
	}
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.Log.Level == "" {
		c.Log.Level = os.Getenv("LOG_LEVEL")
	}
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.GitHub.NoMilestoneTitle == "" {
		c.GitHub.NoMilestoneTitle = "Undecided"
	}

	m := &c.Migration
	if m.Workflow == "" && len(m.Steps) == 0 {
		m.Workflow = "full"
	}
	if m.PostDelay == "" {
		m.PostDelay = "100ms"
	}
	if m.Timezone == "" {
		m.Timezone = "UTC"
	}
	if len(m.LabelFields) == 0 {
		m.LabelFields = []string{"category"}
	}
	if m.LabelColor == "" {
		m.LabelColor = "ffffff"
	}
	if m.CloseIf == "" {
		m.CloseIf = "closed"
	}

	a := &c.Attachments
	if a.Mode == "" {
		a.Mode = "passthrough"
	}
	if a.MaxSizeMB == 0 {
		a.MaxSizeMB = 25
	}
	if a.MaxRetries == 0 {
		a.MaxRetries = 3
	}
	if a.GitHub.Branch == "" {
		a.GitHub.Branch = "fb2gh-attachments"
	}
	if a.GitHub.Path == "" {
		a.GitHub.Path = "attachments"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.FogBugz.URL == "" {
		errs = append(errs, errors.New("fogbugz.url is required"))
	}
	if _, err := c.PostDelay(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch c.Migration.CloseIf {
	case "", "closed", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("migration.close_if: unknown mode %q", c.Migration.CloseIf))
	}
	switch c.Attachments.Mode {
	case "", "passthrough", "github":
	case "s3":
		if c.Attachments.S3.Bucket == "" {
			errs = append(errs, errors.New("attachments.s3.bucket is required in s3 mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("attachments.mode: unknown mode %q", c.Attachments.Mode))
	}

	return errors.Join(errs...)
}

// RequireTarget checks that a target repository is configured.
func (c *Config) RequireTarget() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return errors.New("github.owner and github.repo are required")
	}
	return nil
}

// PostDelay parses migration.post_delay.
func (c *Config) PostDelay() (time.Duration, error) {
	if c.Migration.PostDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Migration.PostDelay)
	if err != nil {
		return 0, fmt.Errorf("migration.post_delay: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("migration.post_delay must not be negative: %s", d)
	}
	return d, nil
}

// Location loads migration.timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Migration.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Migration.Timezone)
	if err != nil {
		return nil, fmt.Errorf("migration.timezone: %w", err)
	}
	return loc, nil
}

// mergeConfigs merges a child config onto a parent config.
// Non-zero values in child override parent.
func mergeConfigs(parent, child *Config) *Config {
	result := *parent
	result.Extends = child.Extends

	// FogBugz: override if any field is set
	if child.FogBugz.URL != "" {
		result.FogBugz.URL = child.FogBugz.URL
	}
	if child.FogBugz.Token != "" {
		result.FogBugz.Token = child.FogBugz.Token
	}
	if child.FogBugz.Email != "" {
		result.FogBugz.Email = child.FogBugz.Email
	}
	if child.FogBugz.Password != "" {
		result.FogBugz.Password = child.FogBugz.Password
	}
	if child.FogBugz.Query != "" {
		result.FogBugz.Query = child.FogBugz.Query
	}
	result.FogBugz.InsecureSkipVerify = parent.FogBugz.InsecureSkipVerify || child.FogBugz.InsecureSkipVerify

	// GitHub
	if child.GitHub.Token != "" {
		result.GitHub.Token = child.GitHub.Token
	}
	if child.GitHub.Owner != "" {
		result.GitHub.Owner = child.GitHub.Owner
	}
	if child.GitHub.Repo != "" {
		result.GitHub.Repo = child.GitHub.Repo
	}
	if child.GitHub.BaseURL != "" {
		result.GitHub.BaseURL = child.GitHub.BaseURL
	}
	if child.GitHub.NoMilestoneTitle != "" {
		result.GitHub.NoMilestoneTitle = child.GitHub.NoMilestoneTitle
	}

	// Migration
	cm, rm := &child.Migration, &result.Migration
	if cm.Workflow != "" {
		rm.Workflow = cm.Workflow
		rm.Steps = nil
	}
	if len(cm.Steps) > 0 {
		rm.Steps = cm.Steps
	}
	if cm.PostDelay != "" {
		rm.PostDelay = cm.PostDelay
	}
	if cm.DateFormat != "" {
		rm.DateFormat = cm.DateFormat
	}
	if cm.Timezone != "" {
		rm.Timezone = cm.Timezone
	}
	if len(cm.ImageExtensions) > 0 {
		rm.ImageExtensions = cm.ImageExtensions
	}
	if len(cm.LabelFields) > 0 {
		rm.LabelFields = cm.LabelFields
	}
	if cm.LabelColor != "" {
		rm.LabelColor = cm.LabelColor
	}
	if cm.CloseIf != "" {
		rm.CloseIf = cm.CloseIf
	}
	if cm.Ledger != "" {
		rm.Ledger = cm.Ledger
	}
	// Username maps merge key by key.
	if len(cm.UsernameMap) > 0 {
		merged := make(map[string]string, len(rm.UsernameMap)+len(cm.UsernameMap))
		for k, v := range rm.UsernameMap {
			merged[k] = v
		}
		for k, v := range cm.UsernameMap {
			merged[k] = v
		}
		rm.UsernameMap = merged
	}
	// Include: always take the child value so a child can narrow or widen the selection
	rm.Include = cm.Include
	rm.ContinueOnError = cm.ContinueOnError

	// Attachments
	ca, ra := &child.Attachments, &result.Attachments
	if ca.Mode != "" {
		ra.Mode = ca.Mode
	}
	if ca.MaxSizeMB != 0 {
		ra.MaxSizeMB = ca.MaxSizeMB
	}
	if len(ca.SupportedTypes) > 0 {
		ra.SupportedTypes = ca.SupportedTypes
	}
	if ca.MaxRetries != 0 {
		ra.MaxRetries = ca.MaxRetries
	}
	if ca.GitHub.Branch != "" {
		ra.GitHub.Branch = ca.GitHub.Branch
	}
	if ca.GitHub.Path != "" {
		ra.GitHub.Path = ca.GitHub.Path
	}
	if ca.S3.Bucket != "" {
		ra.S3 = ca.S3
	}

	// Log
	if child.Log.Level != "" {
		result.Log.Level = child.Log.Level
	}
	if child.Log.Encoding != "" {
		result.Log.Encoding = child.Log.Encoding
	}

	return &result
}

// ParseExtendsRef parses "org/repo@branch" into components.
func ParseExtendsRef(ref string) (org, repo, branch, path string, err error) {
	// Format: org/repo@branch or org/repo@branch:path
	parts := strings.SplitN(ref, "@", 2)
	if len(parts) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo@branch)", ref)
	}

	orgRepo := strings.SplitN(parts[0], "/", 2)
	if len(orgRepo) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo)", ref)
	}

	org = orgRepo[0]
	repo = orgRepo[1]

	// Check for path
	branchPath := strings.SplitN(parts[1], ":", 2)
	branch = branchPath[0]
	if len(branchPath) == 2 {
		path = branchPath[1]
	} else {
		path = ".github/fb2gh.yaml" // default path
	}

	return org, repo, branch, path, nil
}
