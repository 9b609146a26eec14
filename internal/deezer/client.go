package deezer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/handiism/dmx/internal/cache"
	"github.com/handiism/dmx/internal/deezer/dto"
	"github.com/handiism/dmx/internal/http"
	"github.com/handiism/dmx/internal/model"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNetwork wraps transport and HTTP status failures.
	ErrNetwork = errors.New("catalog request failed")

	// ErrAPI is returned when the API answers with an error payload.
	ErrAPI = errors.New("catalog API error")

	// ErrNotFound is returned when the requested object does not exist.
	ErrNotFound = errors.New("not found in catalog")

	// ErrInvalidURL is returned by ResolveURL for links it cannot map.
	ErrInvalidURL = errors.New("not a Deezer track, album or artist URL")
)

// DefaultBaseURL is the public Deezer API endpoint.
const DefaultBaseURL = "https://api.deezer.com"

// codeDataNotFound is the API error code for missing objects.
const codeDataNotFound = 800

// Cache stores raw API responses keyed by request URL hash.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, data []byte) error
}

// Config holds catalog client settings. Zero values select defaults.
type Config struct {
	// BaseURL of the API. Default DefaultBaseURL.
	BaseURL string

	// SearchLimit is the number of results per search. Default 20.
	SearchLimit int

	// TopTracksLimit is the number of top tracks in a profile. Default 10.
	TopTracksLimit int

	// AlbumsLimit caps the album list of a profile. Default 500.
	AlbumsLimit int

	// Concurrency bounds parallel album lookups in a profile. Default 4.
	Concurrency int
}

// Client is the catalog client for the Deezer public API.
//
// Client provides:
//   - Track, album and artist search (artists ranked by fan count)
//   - Artist profiles: top tracks plus the full album list with track counts
//   - Album expansion into tracks for downloading
//   - Lookup of single tracks and albums, and resolution of deezer.com links
//
// Responses are cached through the optional Cache. Error payloads are
// detected and never cached.
//
// Example:
//
//	client := deezer.NewClient(httpClient, store, deezer.Config{SearchLimit: 20}, logger)
//	tracks, err := client.SearchTracks(ctx, "daft punk")
//	if errors.Is(err, deezer.ErrNetwork) {
//	    // offline or API unavailable
//	}
type Client struct {
	http   *http.Client
	cache  Cache
	cfg    Config
	logger *zap.Logger
}

// NewClient creates a new catalog client. cache may be nil.
func NewClient(httpClient *http.Client, cache Cache, cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 20
	}
	if cfg.TopTracksLimit <= 0 {
		cfg.TopTracksLimit = 10
	}
	if cfg.AlbumsLimit <= 0 {
		cfg.AlbumsLimit = 500
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: httpClient, cache: cache, cfg: cfg, logger: logger}
}

// SearchTracks searches tracks matching query.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]*model.Track, error) {
	page, err := fetch[dto.Page[dto.Track]](ctx, c, "/search/track", c.searchParams(query))
	if err != nil {
		return nil, err
	}
	return lo.Map(page.Data, func(t dto.Track, _ int) *model.Track {
		return t.ToTrack(nil)
	}), nil
}

// SearchAlbums searches albums matching query.
func (c *Client) SearchAlbums(ctx context.Context, query string) ([]*model.Album, error) {
	page, err := fetch[dto.Page[dto.Album]](ctx, c, "/search/album", c.searchParams(query))
	if err != nil {
		return nil, err
	}
	return lo.Map(page.Data, func(a dto.Album, _ int) *model.Album {
		return a.ToAlbum(nil)
	}), nil
}

// SearchArtists searches artists matching query, sorted by descending
// fan count.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]*model.Artist, error) {
	page, err := fetch[dto.Page[dto.Artist]](ctx, c, "/search/artist", c.searchParams(query))
	if err != nil {
		return nil, err
	}
	artists := lo.Map(page.Data, func(a dto.Artist, _ int) *model.Artist {
		return a.ToArtist()
	})
	sort.SliceStable(artists, func(i, j int) bool {
		return artists[i].Fans > artists[j].Fans
	})
	return artists, nil
}

// ArtistProfile fetches an artist with its top tracks and full album list.
//
// The album listing endpoint does not report track counts, so each album
// is looked up concurrently; a failed lookup leaves its count at zero.
func (c *Client) ArtistProfile(ctx context.Context, artistID int64) (*model.ArtistProfile, error) {
	var (
		artist dto.Artist
		top    dto.Page[dto.Track]
		albums dto.Page[dto.Album]
	)
	base := fmt.Sprintf("/artist/%d", artistID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		artist, err = fetch[dto.Artist](gctx, c, base, nil)
		return err
	})
	g.Go(func() (err error) {
		top, err = fetch[dto.Page[dto.Track]](gctx, c, base+"/top", limitParam(c.cfg.TopTracksLimit))
		return err
	})
	g.Go(func() (err error) {
		albums, err = fetch[dto.Page[dto.Album]](gctx, c, base+"/albums", limitParam(c.cfg.AlbumsLimit))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	unique := lo.UniqBy(albums.Data, func(a dto.Album) int64 { return a.ID })
	c.fillTrackCounts(ctx, unique)

	return &model.ArtistProfile{
		Artist: artist.ToArtist(),
		TopTracks: lo.Map(top.Data, func(t dto.Track, _ int) *model.Track {
			return t.ToTrack(nil)
		}),
		Albums: lo.Map(unique, func(a dto.Album, _ int) *model.Album {
			return a.ToAlbum(&artist)
		}),
	}, nil
}

// AlbumTracks expands an album into its tracks, in album order.
func (c *Client) AlbumTracks(ctx context.Context, albumID int64) ([]*model.Track, error) {
	var (
		album  dto.Album
		tracks dto.Page[dto.Track]
	)
	base := fmt.Sprintf("/album/%d", albumID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		album, err = fetch[dto.Album](gctx, c, base, nil)
		return err
	})
	g.Go(func() (err error) {
		tracks, err = fetch[dto.Page[dto.Track]](gctx, c, base+"/tracks", limitParam(c.cfg.AlbumsLimit))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lo.Map(tracks.Data, func(t dto.Track, i int) *model.Track {
		track := t.ToTrack(&album)
		if track.Number == 0 {
			track.Number = i + 1
		}
		return track
	}), nil
}

// Track fetches a single track.
func (c *Client) Track(ctx context.Context, trackID int64) (*model.Track, error) {
	t, err := fetch[dto.Track](ctx, c, fmt.Sprintf("/track/%d", trackID), nil)
	if err != nil {
		return nil, err
	}
	return t.ToTrack(nil), nil
}

// Album fetches a single album.
func (c *Client) Album(ctx context.Context, albumID int64) (*model.Album, error) {
	a, err := fetch[dto.Album](ctx, c, fmt.Sprintf("/album/%d", albumID), nil)
	if err != nil {
		return nil, err
	}
	return a.ToAlbum(nil), nil
}

// Ping checks that the API is reachable, bypassing the cache.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.http.Get(ctx, c.cfg.BaseURL+"/infos")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return apiError(body)
}

// ResolveURL maps a deezer.com link to the kind and ID it points at.
//
// Accepted forms:
//   - https://www.deezer.com/track/3135556
//   - https://www.deezer.com/en/album/302127
//   - https://deezer.com/artist/27?utm_source=share
func ResolveURL(raw string) (model.Kind, int64, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.HasSuffix(u.Hostname(), "deezer.com") {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		id, err := strconv.ParseInt(parts[i+1], 10, 64)
		if err != nil {
			continue
		}
		switch parts[i] {
		case "track":
			return model.KindTrack, id, nil
		case "album":
			return model.KindAlbum, id, nil
		case "artist":
			return model.KindArtist, id, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
}

func (c *Client) fillTrackCounts(ctx context.Context, albums []dto.Album) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i := range albums {
		if albums[i].NbTracks > 0 {
			continue
		}
		i := i
		g.Go(func() error {
			full, err := fetch[dto.Album](gctx, c, fmt.Sprintf("/album/%d", albums[i].ID), nil)
			if err != nil {
				c.logger.Warn("album track count lookup failed",
					zap.Int64("album_id", albums[i].ID),
					zap.Error(err))
				return nil
			}
			albums[i].NbTracks = full.NbTracks
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Client) searchParams(query string) url.Values {
	params := limitParam(c.cfg.SearchLimit)
	params.Set("q", query)
	return params
}

func limitParam(limit int) url.Values {
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// fetch performs a cached GET of path and decodes the JSON body into T.
func fetch[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var out T

	endpoint := c.cfg.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	key := cache.Key(endpoint)

	body, cached := c.lookup(key)
	if !cached {
		var err error
		body, err = c.http.Get(ctx, endpoint)
		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	}

	if err := apiError(body); err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s: %w", ErrAPI, path, err)
	}

	if !cached && c.cache != nil {
		if err := c.cache.Put(key, body); err != nil {
			c.logger.Warn("cache write failed", zap.String("path", path), zap.Error(err))
		}
	}
	c.logger.Debug("catalog request", zap.String("path", path), zap.Bool("cached", cached))
	return out, nil
}

func (c *Client) lookup(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// apiError converts an {"error": {...}} payload into ErrAPI or ErrNotFound.
func apiError(body []byte) error {
	res := gjson.GetBytes(body, "error")
	if !res.Exists() {
		return nil
	}
	var e dto.Error
	if err := json.Unmarshal([]byte(res.Raw), &e); err != nil {
		return fmt.Errorf("%w: %s", ErrAPI, res.Raw)
	}
	if e.Code == codeDataNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, e.Message)
	}
	return fmt.Errorf("%w: %s (%s, code %d)", ErrAPI, e.Message, e.Type, e.Code)
}
