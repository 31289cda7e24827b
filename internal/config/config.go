// Package config holds the run parameters of the danceable command: input
// and output paths, keywords and pipeline thresholds.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vegasq/danceable/output"
	"github.com/vegasq/danceable/pipeline"
)

// Inputs are the paths of the five source files
type Inputs struct {
	Artists          string `yaml:"artists" json:"artists"`
	AudioFeatures    string `yaml:"audio_features" json:"audio_features"`
	GeniusSongLyrics string `yaml:"genius_song_lyrics" json:"genius_song_lyrics"`
	RTrackArtist     string `yaml:"r_track_artist" json:"r_track_artist"`
	Tracks           string `yaml:"tracks" json:"tracks"`
}

// Config is the full run configuration
type Config struct {
	Inputs   Inputs   `yaml:"inputs" json:"inputs"`
	Output   string   `yaml:"output" json:"output"`
	Format   string   `yaml:"format" json:"format"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Limit    int64    `yaml:"limit" json:"limit"`

	MinViews       int64          `yaml:"min_views" json:"min_views"`
	Language       string         `yaml:"language" json:"language"`
	TrackURLPrefix string         `yaml:"track_url_prefix" json:"track_url_prefix"`
	Danceability   pipeline.Range `yaml:"danceability" json:"danceability"`
	Energy         pipeline.Range `yaml:"energy" json:"energy"`
	Tempo          pipeline.Range `yaml:"tempo" json:"tempo"`
}

// Default returns a configuration with the standard thresholds and no paths
func Default() *Config {
	p := pipeline.DefaultParams()
	return &Config{
		Format:         string(output.FormatCSV),
		MinViews:       p.MinViews,
		Language:       p.Language,
		TrackURLPrefix: p.TrackURLPrefix,
		Danceability:   p.Danceability,
		Energy:         p.Energy,
		Tempo:          p.Tempo,
	}
}

// Load reads a YAML or JSON file over the defaults.
// The file format is determined by the file extension (.yaml, .yml, or .json).
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}

	return cfg, nil
}

// Params converts the thresholds into pipeline parameters
func (c *Config) Params() pipeline.Params {
	return pipeline.Params{
		MinViews:       c.MinViews,
		Language:       c.Language,
		Danceability:   c.Danceability,
		Energy:         c.Energy,
		Tempo:          c.Tempo,
		TrackURLPrefix: c.TrackURLPrefix,
	}
}

// Validate checks that every required path is set and the thresholds make sense
func (c *Config) Validate() error {
	required := []struct {
		flag  string
		value string
	}{
		{"artists", c.Inputs.Artists},
		{"audio-features", c.Inputs.AudioFeatures},
		{"genius-song-lyrics", c.Inputs.GeniusSongLyrics},
		{"r-track-artist", c.Inputs.RTrackArtist},
		{"tracks", c.Inputs.Tracks},
		{"output", c.Output},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, "-"+r.flag)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required arguments: %s", strings.Join(missing, ", "))
	}

	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	if c.Language == "" {
		return errors.New("language must not be empty")
	}
	return c.Params().Validate()
}
