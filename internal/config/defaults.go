package config

const (
	defaultPlexURL           = "http://127.0.0.1:32400"
	defaultLibraryName       = "Music"
	defaultConfidence        = 3.0
	defaultCriticBias        = 1.5
	defaultCriticWeight      = 3.0
	defaultGlobalWeight      = 1.0
	defaultAlbumGravity      = 0.2
	defaultTrackGravity      = 0.3
	defaultMarkerTag         = "Rating_Inferred"
	defaultMinTrackSeconds   = 45
	defaultTwinTolerance     = 5
	defaultCooldownBatch     = 25
	defaultCooldownSeconds   = 5
	defaultStateDir          = "~/.local/share/plexrate"
	defaultArtistCSV         = "./artist_ratings.csv"
	defaultAlbumCSV          = "./album_ratings.csv"
	defaultTrackCSV          = "./track_ratings.csv"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
)

func defaultNoiseKeywords() []string {
	return []string{"intro", "outro", "skit", "interlude", "applause", "dialogue"}
}

func defaultTwinExcludeKeywords() []string {
	return []string{"live", "demo", "remix", "acoustic", "instrumental", "karaoke"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plex: Plex{
			URL:     defaultPlexURL,
			Library: defaultLibraryName,
		},
		Inference: Inference{
			Confidence:       defaultConfidence,
			CriticBias:       defaultCriticBias,
			CriticWeight:     defaultCriticWeight,
			GlobalWeight:     defaultGlobalWeight,
			AlbumGravity:     defaultAlbumGravity,
			TrackGravity:     defaultTrackGravity,
			DynamicPrecision: true,
			MarkerTag:        defaultMarkerTag,
		},
		Noise: Noise{
			MinDurationSeconds: defaultMinTrackSeconds,
			Keywords:           defaultNoiseKeywords(),
		},
		Twins: Twins{
			Enabled:                  true,
			DurationToleranceSeconds: defaultTwinTolerance,
			ExcludeKeywords:          defaultTwinExcludeKeywords(),
			ExcludeParenthetical:     true,
			ExcludeLiveAlbums:        true,
		},
		Pacing: Pacing{
			CooldownBatch:   defaultCooldownBatch,
			CooldownSeconds: defaultCooldownSeconds,
		},
		Bulk: Bulk{
			ArtistCSV: defaultArtistCSV,
			AlbumCSV:  defaultAlbumCSV,
			TrackCSV:  defaultTrackCSV,
		},
		State: State{
			Dir: defaultStateDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
