package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Plex contains connection settings for the Plex server.
type Plex struct {
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	Library string `toml:"library"`
}

// Inference contains the Bayesian blend constants and write policy.
type Inference struct {
	// Confidence is the number of virtual average-rated children mixed
	// into every posterior (shrinkage strength).
	Confidence float64 `toml:"confidence"`
	// CriticBias is added to album critic ratings before normalization.
	CriticBias float64 `toml:"critic_bias"`
	// CriticWeight and GlobalWeight set the informed-prior mix.
	CriticWeight float64 `toml:"critic_weight"`
	GlobalWeight float64 `toml:"global_weight"`
	// AlbumGravity and TrackGravity pull inherited ratings toward the
	// global prior, per inheritance level.
	AlbumGravity float64 `toml:"album_gravity"`
	TrackGravity float64 `toml:"track_gravity"`
	// DynamicPrecision enables the size-dependent drift tolerance.
	// Disabled, any difference triggers a write.
	DynamicPrecision bool `toml:"dynamic_precision"`
	// MarkerTag is the mood tag stamped on engine-authored ratings.
	// Empty disables tagging and with it state reconstruction.
	MarkerTag string `toml:"marker_tag"`
	// DryRun computes everything but writes nothing.
	DryRun bool `toml:"dry_run"`
}

// Noise controls which tracks are excluded from aggregation.
type Noise struct {
	MinDurationSeconds int      `toml:"min_duration_seconds"`
	Keywords           []string `toml:"keywords"`
}

// Twins controls duplicate-track matching.
type Twins struct {
	Enabled                  bool     `toml:"enabled"`
	DurationToleranceSeconds int      `toml:"duration_tolerance_seconds"`
	ExcludeKeywords          []string `toml:"exclude_keywords"`
	ExcludeParenthetical     bool     `toml:"exclude_parenthetical"`
	ExcludeLiveAlbums        bool     `toml:"exclude_live_albums"`
}

// Pacing bounds the write load on the Plex server.
type Pacing struct {
	CooldownBatch   int `toml:"cooldown_batch"`
	CooldownSeconds int `toml:"cooldown_seconds"`
}

// Bulk contains the CSV file locations for import/export.
type Bulk struct {
	ArtistCSV string `toml:"artist_csv"`
	AlbumCSV  string `toml:"album_csv"`
	TrackCSV  string `toml:"track_csv"`
}

// State locates the shadow-state directory.
type State struct {
	Dir string `toml:"dir"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for plexrate.
type Config struct {
	Plex      Plex      `toml:"plex"`
	Inference Inference `toml:"inference"`
	Noise     Noise     `toml:"noise"`
	Twins     Twins     `toml:"twins"`
	Pacing    Pacing    `toml:"pacing"`
	Bulk      Bulk      `toml:"bulk"`
	State     State     `toml:"state"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/plexrate/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string { return sampleConfig }

// ExpandPath resolves ~ and makes the path absolute.
func ExpandPath(path string) (string, error) { return expandPath(path) }

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// Load locates, parses, normalizes, and validates a configuration
// file. It returns the config, the resolved path, and whether a file
// was actually found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("plexrate.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
