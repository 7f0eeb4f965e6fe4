package model

// Creator is a tracked channel and the loyalty figures derived from watch history.
type Creator struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	LoyaltyScore        int            `json:"loyaltyScore"`
	Frequency           int            `json:"frequency"`
	LastUploadDate      *int64         `json:"lastUploadDate,omitempty"` // ms since epoch
	LatestVideo         *LatestVideo   `json:"latestVideo,omitempty"`
	Keywords            map[string]int `json:"keywords,omitempty"`
	Endorsements        []string       `json:"endorsements,omitempty"`
	EnrichedDescription string         `json:"enrichedDescription,omitempty"`
}

// LatestVideo is the newest upload seen on a creator's feed.
type LatestVideo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Published int64  `json:"published"`
}

// Clone returns a copy that shares no maps or slices with c.
func (c Creator) Clone() Creator {
	out := c
	if c.LastUploadDate != nil {
		v := *c.LastUploadDate
		out.LastUploadDate = &v
	}
	if c.LatestVideo != nil {
		v := *c.LatestVideo
		out.LatestVideo = &v
	}
	if c.Keywords != nil {
		out.Keywords = make(map[string]int, len(c.Keywords))
		for k, v := range c.Keywords {
			out.Keywords[k] = v
		}
	}
	if c.Endorsements != nil {
		out.Endorsements = append([]string(nil), c.Endorsements...)
	}
	return out
}

// Endorses reports whether c has featured the creator with the given id.
func (c Creator) Endorses(id string) bool {
	for _, e := range c.Endorsements {
		if e == id {
			return true
		}
	}
	return false
}

// HistoryEntry is one watch event.
type HistoryEntry struct {
	VideoID       string           `json:"videoId"`
	ChannelID     string           `json:"channelId"`
	Title         string           `json:"title,omitempty"`
	WatchTime     float64          `json:"watchTime"`     // seconds watched
	TotalDuration float64          `json:"totalDuration"` // seconds
	TrueDuration  *float64         `json:"trueDuration,omitempty"`
	Timestamp     int64            `json:"timestamp"` // ms since epoch
	Tags          []string         `json:"tags,omitempty"`
	Category      string           `json:"category,omitempty"`
	Summary       string           `json:"summary,omitempty"`
	Annotations   []Annotation     `json:"annotations,omitempty"`
	Segments      []SponsorSegment `json:"segments,omitempty"`
}

// Annotation is a note pinned to a playback position (seconds).
type Annotation struct {
	Timestamp float64 `json:"timestamp"`
	Note      string  `json:"note"`
}

// SponsorSegment marks filler inside a video, in seconds.
type SponsorSegment struct {
	Category string  `json:"category"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
}

// SuggestionStatus tracks what the user did with a discovered creator.
type SuggestionStatus string

const (
	StatusNew      SuggestionStatus = "new"
	StatusIgnored  SuggestionStatus = "ignored"
	StatusFollowed SuggestionStatus = "followed"
)

// Valid reports whether s is a known status.
func (s SuggestionStatus) Valid() bool {
	switch s {
	case StatusNew, StatusIgnored, StatusFollowed:
		return true
	}
	return false
}

// Suggestion is a discovered creator that is not tracked yet.
type Suggestion struct {
	ChannelID string           `json:"channelId"`
	Reason    string           `json:"reason"`
	Status    SuggestionStatus `json:"status"`
}

// EmbeddingEntry is a stored vector keyed by creator id or VideoKey.
type EmbeddingEntry struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"embedding"`
	Timestamp int64     `json:"timestamp"`
}

// VideoKey is the embedding key used for a single video.
func VideoKey(videoID string) string { return "video:" + videoID }

// Ptr returns a pointer to v. Handy for the optional numeric fields.
func Ptr[T any](v T) *T { return &v }
