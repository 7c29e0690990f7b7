package plexlib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
)

func jsonDecode(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

// Connect locates the named music section and binds the client to it.
// Subsequent reads and writes operate on this section.
func (c *Client) Connect(ctx context.Context, libraryTitle string) (Section, error) {
	var resp sectionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/library/sections", &resp); err != nil {
		return Section{}, fmt.Errorf("list sections: %w", err)
	}
	for _, dir := range resp.MediaContainer.Directory {
		if dir.Title == libraryTitle {
			c.section = Section{Key: dir.Key, Title: dir.Title, UUID: dir.UUID}
			return c.section, nil
		}
	}
	return Section{}, fmt.Errorf("%w: %q", ErrSectionNotFound, libraryTitle)
}

// Section returns the bound section. Zero value before Connect.
func (c *Client) Section() Section { return c.section }

// ListItems fetches every item of one kind in the bound section.
func (c *Client) ListItems(ctx context.Context, kind catalog.Kind) ([]*catalog.Item, error) {
	query := url.Values{}
	query.Set("type", fmt.Sprintf("%d", kind.PlexType()))
	path := fmt.Sprintf("/library/sections/%s/all?%s", c.section.Key, query.Encode())

	var resp itemsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, err)
	}
	items := make([]*catalog.Item, 0, len(resp.MediaContainer.Metadata))
	for _, meta := range resp.MediaContainer.Metadata {
		items = append(items, meta.toItem(kind))
	}
	return items, nil
}

// FetchLibrary reads a full catalog snapshot: artists, albums, and
// tracks of the bound section, indexed and sorted.
func (c *Client) FetchLibrary(ctx context.Context) (*catalog.Library, error) {
	if c.section.Key == "" {
		return nil, fmt.Errorf("fetch library: not connected to a section")
	}
	var all []*catalog.Item
	for _, kind := range []catalog.Kind{catalog.KindArtist, catalog.KindAlbum, catalog.KindTrack} {
		items, err := c.ListItems(ctx, kind)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return catalog.NewLibrary(c.section.Title, c.section.UUID, all), nil
}
