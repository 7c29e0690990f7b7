package engine

import (
	"time"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/config"
	"github.com/CWuestefeld/plex-rating-utils/internal/inference"
)

// Params are the resolved run-time policies for one engine instance.
type Params struct {
	Blend        inference.BlendParams
	AlbumGravity float64
	TrackGravity float64

	Noise        catalog.NoisePolicy
	Twins        inference.TwinPolicy
	TwinsEnabled bool

	DynamicPrecision bool
	MarkerTag        string
	DryRun           bool

	CooldownBatch int
	CooldownPause time.Duration

	// AllowStampMismatch lets a run proceed against a library whose
	// identity differs from the one the shadow state was built for.
	// Deliberate escape hatch; the stamp is rebound on first commit.
	AllowStampMismatch bool
}

// ParamsFromConfig maps validated configuration onto engine policies.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Blend: inference.BlendParams{
			Confidence:   cfg.Inference.Confidence,
			CriticBias:   cfg.Inference.CriticBias,
			CriticWeight: cfg.Inference.CriticWeight,
			GlobalWeight: cfg.Inference.GlobalWeight,
		},
		AlbumGravity: cfg.Inference.AlbumGravity,
		TrackGravity: cfg.Inference.TrackGravity,
		Noise: catalog.NoisePolicy{
			MinDuration: time.Duration(cfg.Noise.MinDurationSeconds) * time.Second,
			Keywords:    cfg.Noise.Keywords,
		},
		Twins: inference.TwinPolicy{
			Tolerance:            time.Duration(cfg.Twins.DurationToleranceSeconds) * time.Second,
			ExcludeKeywords:      cfg.Twins.ExcludeKeywords,
			ExcludeParenthetical: cfg.Twins.ExcludeParenthetical,
			ExcludeLiveAlbums:    cfg.Twins.ExcludeLiveAlbums,
		},
		TwinsEnabled:     cfg.Twins.Enabled,
		DynamicPrecision: cfg.Inference.DynamicPrecision,
		MarkerTag:        cfg.Inference.MarkerTag,
		DryRun:           cfg.Inference.DryRun,
		CooldownBatch:    cfg.Pacing.CooldownBatch,
		CooldownPause:    time.Duration(cfg.Pacing.CooldownSeconds) * time.Second,
	}
}
