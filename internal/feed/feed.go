// Package feed reads a channel's public upload feed to learn when it last posted.
package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"curator/internal/model"
)

// DefaultBaseURL serves Atom feeds keyed by channel_id.
const DefaultBaseURL = "https://www.youtube.com/feeds/videos.xml"

// channelPrefix marks creator ids that carry a raw channel id.
const channelPrefix = "/channel/"

var (
	// ErrNotPollable means the creator id has no channel id to build a feed URL from.
	ErrNotPollable = errors.New("feed: creator id is not a /channel/ id")
	// ErrEmpty means the feed parsed but listed no uploads.
	ErrEmpty = errors.New("feed: no entries")
)

// Fetcher pulls feeds over HTTP at a bounded request rate.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Fetcher)

func WithBaseURL(u string) Option          { return func(f *Fetcher) { f.baseURL = u } }
func WithHTTPClient(hc *http.Client) Option { return func(f *Fetcher) { f.httpClient = hc } }
func WithLimiter(l *rate.Limiter) Option    { return func(f *Fetcher) { f.limiter = l } }

// NewFetcher returns a Fetcher allowing one request per second with a small burst.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ChannelID extracts the raw channel id from a creator id.
func ChannelID(creatorID string) (string, bool) {
	id, ok := strings.CutPrefix(creatorID, channelPrefix)
	id = strings.Trim(id, "/")
	return id, ok && id != ""
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string `xml:"title"`
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	Published string `xml:"published"`
}

// Latest returns the newest upload listed in the creator's feed.
func (f *Fetcher) Latest(ctx context.Context, creatorID string) (model.LatestVideo, error) {
	id, ok := ChannelID(creatorID)
	if !ok {
		return model.LatestVideo{}, ErrNotPollable
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return model.LatestVideo{}, err
	}
	u := f.baseURL + "?channel_id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.LatestVideo{}, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return model.LatestVideo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return model.LatestVideo{}, fmt.Errorf("feed %s: status %d", id, resp.StatusCode)
	}
	return Parse(io.LimitReader(resp.Body, 4<<20))
}

// Parse decodes an Atom upload feed and returns its first entry, which is the newest.
func Parse(r io.Reader) (model.LatestVideo, error) {
	var feed atomFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return model.LatestVideo{}, fmt.Errorf("feed: decode: %w", err)
	}
	if len(feed.Entries) == 0 {
		return model.LatestVideo{}, ErrEmpty
	}
	e := feed.Entries[0]
	published, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published))
	if err != nil {
		return model.LatestVideo{}, fmt.Errorf("feed: published: %w", err)
	}
	return model.LatestVideo{
		ID:        strings.TrimSpace(e.VideoID),
		Title:     strings.TrimSpace(e.Title),
		Published: published.UnixMilli(),
	}, nil
}
