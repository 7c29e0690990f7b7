package plexlib

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
)

// ratingIdentifier is the identifier Plex expects on rating writes.
const ratingIdentifier = "com.plexapp.plugins.library"

// Rate sets an item's rating, given in stars. The operation is
// idempotent: retrying the same value is harmless.
func (c *Client) Rate(ctx context.Context, itemID string, stars float64) error {
	query := url.Values{}
	query.Set("key", itemID)
	query.Set("identifier", ratingIdentifier)
	query.Set("rating", strconv.FormatFloat(WireFromStars(stars), 'f', -1, 64))
	if err := c.doWrite(ctx, http.MethodPut, "/:/rate?"+query.Encode()); err != nil {
		return fmt.Errorf("rate item %s: %w", itemID, err)
	}
	return nil
}

// Unrate clears an item's rating.
func (c *Client) Unrate(ctx context.Context, itemID string) error {
	query := url.Values{}
	query.Set("key", itemID)
	query.Set("identifier", ratingIdentifier)
	query.Set("rating", "-1")
	if err := c.doWrite(ctx, http.MethodPut, "/:/rate?"+query.Encode()); err != nil {
		return fmt.Errorf("unrate item %s: %w", itemID, err)
	}
	return nil
}

// AddMarker attaches the marker mood tag to an item so a rebuilt
// shadow state can recognize engine-authored ratings.
func (c *Client) AddMarker(ctx context.Context, kind catalog.Kind, itemID, tag string) error {
	if tag == "" {
		return nil
	}
	query := url.Values{}
	query.Set("type", strconv.Itoa(kind.PlexType()))
	query.Set("id", itemID)
	query.Set("mood[0].tag.tag", tag)
	query.Set("mood.locked", "1")
	path := fmt.Sprintf("/library/sections/%s/all?%s", c.section.Key, query.Encode())
	if err := c.doWrite(ctx, http.MethodPut, path); err != nil {
		return fmt.Errorf("add marker to %s: %w", itemID, err)
	}
	return nil
}

// RemoveMarker strips the marker mood tag from an item.
func (c *Client) RemoveMarker(ctx context.Context, kind catalog.Kind, itemID, tag string) error {
	if tag == "" {
		return nil
	}
	query := url.Values{}
	query.Set("type", strconv.Itoa(kind.PlexType()))
	query.Set("id", itemID)
	query.Set("mood[].tag.tag-", tag)
	path := fmt.Sprintf("/library/sections/%s/all?%s", c.section.Key, query.Encode())
	if err := c.doWrite(ctx, http.MethodPut, path); err != nil {
		return fmt.Errorf("remove marker from %s: %w", itemID, err)
	}
	return nil
}
