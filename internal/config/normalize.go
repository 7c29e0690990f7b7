package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error

	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	c.Plex.Library = strings.TrimSpace(c.Plex.Library)
	c.Inference.MarkerTag = strings.TrimSpace(c.Inference.MarkerTag)

	if strings.TrimSpace(c.State.Dir) == "" {
		c.State.Dir = defaultStateDir
	}
	if c.State.Dir, err = expandPath(c.State.Dir); err != nil {
		return fmt.Errorf("state.dir: %w", err)
	}

	if c.Bulk.ArtistCSV, err = expandPath(c.Bulk.ArtistCSV); err != nil {
		return fmt.Errorf("bulk.artist_csv: %w", err)
	}
	if c.Bulk.AlbumCSV, err = expandPath(c.Bulk.AlbumCSV); err != nil {
		return fmt.Errorf("bulk.album_csv: %w", err)
	}
	if c.Bulk.TrackCSV, err = expandPath(c.Bulk.TrackCSV); err != nil {
		return fmt.Errorf("bulk.track_csv: %w", err)
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}
