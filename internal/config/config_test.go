package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Decode.DeduplicateValues || !cfg.Decode.DeduplicatePointIDs {
		t.Error("expected deduplication to be enabled by default")
	}
	if cfg.Decode.PointCloud {
		t.Error("expected point_cloud to be false by default")
	}

	if cfg.Output.Format != FormatText {
		t.Errorf("expected format 'text', got %s", cfg.Output.Format)
	}
	if !cfg.Output.Bounds {
		t.Error("expected bounds to be true by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"yaml format", func(c *Config) { c.Output.Format = FormatYAML }, false},
		{"unknown format", func(c *Config) { c.Output.Format = "json" }, true},
		{"empty format", func(c *Config) { c.Output.Format = "" }, true},
		{"warn level", func(c *Config) { c.Logging.Level = "warn" }, false},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
decode:
  deduplicate_values: false
  point_cloud: true

output:
  format: yaml
  bounds: false

logging:
  level: "debug"
  log_file: "plytool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Decode.DeduplicateValues {
		t.Error("expected deduplicate_values to be false")
	}
	// Keys absent from the file keep their defaults.
	if !cfg.Decode.DeduplicatePointIDs {
		t.Error("expected deduplicate_point_ids to keep its default")
	}
	if !cfg.Decode.PointCloud {
		t.Error("expected point_cloud to be true")
	}
	if cfg.Output.Format != FormatYAML {
		t.Errorf("expected format yaml, got %s", cfg.Output.Format)
	}
	if cfg.Output.Bounds {
		t.Error("expected bounds to be false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "plytool.log" {
		t.Errorf("expected log file 'plytool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "decode:\n  point_cloud: [unterminated\n"},
		{"wrong type", "decode:\n  point_cloud: sometimes\n"},
		{"unknown key", "decode:\n  triangulate: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty config should load, got %v", err)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("expected defaults to survive, got format %s", cfg.Output.Format)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdirForTest(t, tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "plytool.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  format: yaml\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find plytool.yaml in current directory")
	}
}

// loadWithArgs runs a cli app with the config flags and loads the config
// from its context.
func loadWithArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var cfg *Config
	var loadErr error
	app := &cli.App{
		Name:  "plytool",
		Flags: Flags(),
		Action: func(c *cli.Context) error {
			cfg, loadErr = Load(c)
			return nil
		},
	}
	if err := app.Run(append([]string{"plytool"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return cfg, loadErr
}

func TestApplyFlags(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "debug wins over log level",
			args: []string{"--log-level", "error", "--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "log level and file",
			args: []string{"--log-level", "warn", "--log-file", "/tmp/ply.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "warn" {
					t.Errorf("expected log level 'warn', got %s", cfg.Logging.Level)
				}
				if cfg.Logging.LogFile != "/tmp/ply.log" {
					t.Errorf("expected log file /tmp/ply.log, got %s", cfg.Logging.LogFile)
				}
			},
		},
		{
			name: "format flag",
			args: []string{"-f", "yaml"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Output.Format != FormatYAML {
					t.Errorf("expected format yaml, got %s", cfg.Output.Format)
				}
			},
		},
		{
			name: "no-dedup flag",
			args: []string{"--no-dedup"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Decode.DeduplicateValues || cfg.Decode.DeduplicatePointIDs {
					t.Error("expected deduplication to be disabled")
				}
			},
		},
		{
			name: "point-cloud flag",
			args: []string{"--point-cloud"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Decode.PointCloud {
					t.Error("expected point_cloud to be true")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadWithArgs(t, tt.args...)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestLoadRejectsInvalidFlags(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := loadWithArgs(t, "--format", "json"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoadPriority(t *testing.T) {
	chdirForTest(t, t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
output:
  format: yaml
  bounds: false
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := loadWithArgs(t, "--config", configPath, "--format", "text")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Format comes from the flag, not the file.
	if cfg.Output.Format != FormatText {
		t.Errorf("expected format text from flag, got %s", cfg.Output.Format)
	}
	// Bounds comes from the file since no flag overrides it.
	if cfg.Output.Bounds {
		t.Error("expected bounds false from file")
	}
}

func TestLoadWithoutFlags(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("expected default format, got %s", cfg.Output.Format)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Output.Format = FormatYAML
	cfg.Decode.PointCloud = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Output.Format != FormatYAML || !loaded.Decode.PointCloud {
		t.Errorf("saved values not restored: %+v", loaded)
	}
}

func TestSave(t *testing.T) {
	if _, ok := os.LookupEnv("APPDATA"); ok {
		t.Skip("config dir is not redirectable on this platform")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path, err := Default().Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved config not found at %s: %v", path, err)
	}
}
