package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// maxCandidates limits how many search hits are considered for ranking.
const maxCandidates = 5

// ErrUnavailable is returned when the catalog API cannot be reached or
// answers with a failure status.
var ErrUnavailable = errors.New("catalog unavailable")

// catalogAPI is the slice of the Spotify client the resolver uses.
type catalogAPI interface {
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
	GetAudioFeatures(ctx context.Context, ids ...spotify.ID) ([]*spotify.AudioFeatures, error)
}

// Resolver finds the best catalog match for a title+artist pair and
// returns its corrected naming, duration, and tempo.
type Resolver struct {
	broker *Broker

	// newAPI builds an authenticated API client for one request.
	newAPI func(ctx context.Context, token *oauth2.Token) catalogAPI
}

// NewResolver creates a Resolver backed by the given credential broker.
func NewResolver(broker *Broker) *Resolver {
	return &Resolver{
		broker: broker,
		newAPI: func(ctx context.Context, token *oauth2.Token) catalogAPI {
			httpClient := spotifyauth.New().Client(ctx, token)
			return spotify.New(httpClient)
		},
	}
}

// Resolve searches the catalog for the given song and returns metadata for
// the most popular match, or (nil, nil) when the catalog has no match.
//
// The query is sent as free text rather than field-qualified
// (track:X artist:Y), which is brittle against typos and alternate
// romanizations and returns zero results far more often.
func (r *Resolver) Resolve(ctx context.Context, title, artist string) (*TrackMetadata, error) {
	token, err := r.broker.Token(ctx)
	if err != nil {
		return nil, err
	}

	api := r.newAPI(ctx, token)

	result, err := api.Search(ctx, title+" "+artist, spotify.SearchTypeTrack, spotify.Limit(maxCandidates))
	if err != nil {
		if isAuthError(err) {
			r.broker.Invalidate()
		}
		return nil, fmt.Errorf("%w: track search: %v", ErrUnavailable, err)
	}

	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, nil
	}

	best := pickBest(result.Tracks.Tracks)

	meta := &TrackMetadata{
		Title:           best.Name,
		Artist:          joinArtists(best.Artists),
		DurationSeconds: msToSeconds(int(best.Duration)),
	}

	features, err := api.GetAudioFeatures(ctx, best.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: audio features: %v", ErrUnavailable, err)
	}
	if len(features) > 0 && features[0] != nil && features[0].Tempo > 0 {
		bpm := int(math.Round(float64(features[0].Tempo)))
		meta.BPM = &bpm
	}

	return meta, nil
}

// pickBest returns the candidate with the highest popularity.
// The sort is stable, so equally popular candidates keep their search rank.
func pickBest(tracks []spotify.FullTrack) spotify.FullTrack {
	ranked := make([]spotify.FullTrack, len(tracks))
	copy(ranked, tracks)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Popularity > ranked[j].Popularity
	})
	return ranked[0]
}

// msToSeconds converts milliseconds to whole seconds, rounding half up.
func msToSeconds(ms int) int {
	return (ms + 500) / 1000
}

// joinArtists flattens the artist list to a comma-separated string.
func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// isAuthError reports whether the API rejected our bearer token.
func isAuthError(err error) bool {
	var spErr spotify.Error
	if !errors.As(err, &spErr) {
		return false
	}
	return spErr.Status == http.StatusUnauthorized
}
