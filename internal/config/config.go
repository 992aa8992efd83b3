package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources    Sources    `yaml:"sources"`
	Shows      []Show     `yaml:"shows"`
	Generation Generation `yaml:"generation"`
	Server     Server     `yaml:"server"`
	Site       Site       `yaml:"site"`
	Notify     Notify     `yaml:"notify"`
	Pacing     Pacing     `yaml:"pacing"`
	Output     Output     `yaml:"output"`
	Logging    Logging    `yaml:"logging"`
}

type Sources struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
}

// Show is a podcast show whose episodes get matched against the show's
// YouTube uploads.
type Show struct {
	Name             string `yaml:"name"`
	FeedURL          string `yaml:"feed_url"`
	YouTubeChannelID string `yaml:"youtube_channel_id"`
	Active           bool   `yaml:"active"`
}

type Generation struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	OpenAIModel string `yaml:"openai_model"`
	APIKeyEnv   string `yaml:"api_key_env"`
}

type Server struct {
	Port     int    `yaml:"port"`
	TokenEnv string `yaml:"token_env"`
}

type Site struct {
	BaseURL string `yaml:"base_url"`
}

type Notify struct {
	ImageWebhookURL string   `yaml:"image_webhook_url"`
	SitemapPingURLs []string `yaml:"sitemap_ping_urls"`
	IndexNowURL     string   `yaml:"indexnow_url"`
	IndexNowKeyEnv  string   `yaml:"indexnow_key_env"`
}

// Pacing bounds the randomized delay between generation calls.
type Pacing struct {
	MinDelaySeconds int `yaml:"min_delay_seconds"`
	MaxDelaySeconds int `yaml:"max_delay_seconds"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for gamewire.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "gamewire")
}

// DataDir returns the XDG data directory for gamewire.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "gamewire")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/gamewire/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'gamewire init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Generation: Generation{
			Provider:    "openai",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
		},
		Server: Server{
			Port:     8080,
			TokenEnv: "SCAN_TOKEN",
		},
		Notify: Notify{
			IndexNowKeyEnv: "INDEXNOW_KEY",
		},
		Pacing:  Pacing{MinDelaySeconds: 12, MaxDelaySeconds: 20},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Pacing.MaxDelaySeconds < cfg.Pacing.MinDelaySeconds {
		return nil, fmt.Errorf("pacing: max_delay_seconds below min_delay_seconds")
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG
// default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// ActiveShows returns the shows the podcast scan should process.
func (c *Config) ActiveShows() []Show {
	var active []Show
	for _, s := range c.Shows {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
