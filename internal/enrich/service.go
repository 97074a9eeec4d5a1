// Package enrich merges catalog metadata and scraped chord sheets into
// one record per song.
package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/palcopro/song-enrich/internal/catalog"
	"github.com/palcopro/song-enrich/internal/sheet"
)

// ErrInvalidInput is returned when the song title or artist is empty.
// It is the only error Enrich returns for upstream-independent reasons;
// any upstream failure degrades the affected branch instead.
var ErrInvalidInput = errors.New("song title and artist are required")

// CatalogResolver resolves a song against the music catalog.
// A (nil, nil) return means the catalog has no match.
type CatalogResolver interface {
	Resolve(ctx context.Context, title, artist string) (*catalog.TrackMetadata, error)
}

// SheetFinder locates a chord-sheet page link for a song.
// An ("", nil) return means no admissible link was found.
type SheetFinder interface {
	FindSheetLink(ctx context.Context, title, artist string) (string, error)
}

// SheetFetcher extracts a chord sheet from a page.
// A (nil, nil) return means the page held no extractable sheet.
type SheetFetcher interface {
	Fetch(ctx context.Context, url string) (*sheet.ChordSheet, error)
}

// maxCacheEntries bounds the record cache, whose keys are caller-controlled.
const maxCacheEntries = 1024

// Service orchestrates the enrichment pipeline: the catalog branch and the
// chord branch run concurrently, each degrading to absent on failure, and
// their results merge into one Record.
type Service struct {
	catalog CatalogResolver
	search  SheetFinder
	sheets  SheetFetcher

	log     logrus.FieldLogger
	timeout time.Duration

	// Finished records, keyed by normalized "title|artist".
	cache   map[string]*Record
	cacheMu sync.RWMutex
}

// NewService creates an enrichment service. timeout bounds each upstream
// call; zero disables the bound.
func NewService(resolver CatalogResolver, finder SheetFinder, fetcher SheetFetcher, log logrus.FieldLogger, timeout time.Duration) *Service {
	return &Service{
		catalog: resolver,
		search:  finder,
		sheets:  fetcher,
		log:     log,
		timeout: timeout,
		cache:   make(map[string]*Record),
	}
}

// Enrich resolves a song against all sources and returns the merged record.
// It fails only on invalid input; upstream outages, including total outage
// of every source, still yield a well-formed, mostly-empty record.
func (s *Service) Enrich(ctx context.Context, title, artist string) (*Record, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return nil, ErrInvalidInput
	}

	cacheKey := strings.ToLower(title) + "|" + strings.ToLower(artist)

	s.cacheMu.RLock()
	if cached, ok := s.cache[cacheKey]; ok {
		s.cacheMu.RUnlock()
		return cached, nil
	}
	s.cacheMu.RUnlock()

	log := s.log.WithFields(logrus.Fields{
		"trace_id": uuid.NewString(),
		"title":    title,
		"artist":   artist,
	})

	// Each goroutine writes only its own slots; no locking needed.
	var (
		meta          *catalog.TrackMetadata
		catalogFailed bool
		chordSheet    *sheet.ChordSheet
		sheetFailed   bool
		wg            sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		meta, catalogFailed = s.resolveCatalog(ctx, log, title, artist)
	}()

	go func() {
		defer wg.Done()
		chordSheet, sheetFailed = s.resolveSheet(ctx, log, title, artist)
	}()

	wg.Wait()

	record := merge(title, artist, meta, chordSheet)

	// Only settled records are cached. A branch coerced to absent by a
	// failure is not a "not found" answer; caching it would pin the
	// outage for the lifetime of the process.
	if !catalogFailed && !sheetFailed {
		s.storeCached(cacheKey, record)
	}

	return record, nil
}

// storeCached adds a record to the cache, evicting an arbitrary entry
// once the bound is reached. Keys are caller-controlled, so the cache
// cannot be allowed to grow without limit.
func (s *Service) storeCached(key string, record *Record) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if len(s.cache) >= maxCacheEntries {
		for k := range s.cache {
			delete(s.cache, k)
			break
		}
	}
	s.cache[key] = record
}

// resolveCatalog runs the catalog branch. Any failure is logged and
// coerced to absent; failed reports whether the absence came from a
// failure rather than a genuine no-match.
func (s *Service) resolveCatalog(ctx context.Context, log logrus.FieldLogger, title, artist string) (meta *catalog.TrackMetadata, failed bool) {
	ctx, cancel := s.branchContext(ctx)
	defer cancel()

	meta, err := s.catalog.Resolve(ctx, title, artist)
	if err != nil {
		log.WithError(err).Warn("catalog branch unavailable")
		return nil, true
	}
	if meta == nil {
		log.Debug("no catalog match")
	}
	return meta, false
}

// resolveSheet runs the chord branch: link search, then page fetch.
// The fetch depends on the search result, so the two are sequential.
// The search uses the caller-supplied title and artist rather than the
// catalog-corrected ones, keeping the branches free to run in parallel.
// failed reports whether the absence came from a failure rather than a
// missing link or sheet.
func (s *Service) resolveSheet(ctx context.Context, log logrus.FieldLogger, title, artist string) (chordSheet *sheet.ChordSheet, failed bool) {
	searchCtx, cancel := s.branchContext(ctx)
	defer cancel()

	link, err := s.search.FindSheetLink(searchCtx, title, artist)
	if err != nil {
		log.WithError(err).Warn("sheet search unavailable")
		return nil, true
	}
	if link == "" {
		log.Debug("no chord-sheet link found")
		return nil, false
	}

	fetchCtx, cancel := s.branchContext(ctx)
	defer cancel()

	chordSheet, err = s.sheets.Fetch(fetchCtx, link)
	if err != nil {
		log.WithError(err).WithField("url", link).Warn("sheet fetch unavailable")
		return nil, true
	}
	if chordSheet == nil {
		log.WithField("url", link).Debug("page held no extractable sheet")
	}
	return chordSheet, false
}

func (s *Service) branchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// merge applies the defaulting rules: corrected naming when the catalog
// resolved, caller input otherwise; sentinel notes when no sheet was found.
func merge(title, artist string, meta *catalog.TrackMetadata, chordSheet *sheet.ChordSheet) *Record {
	record := &Record{
		Name:   title,
		Artist: artist,
		Notes:  SheetNotFoundNote,
	}

	if meta != nil {
		record.Name = meta.Title
		record.Artist = meta.Artist
		record.BPM = meta.BPM
		duration := meta.DurationSeconds
		record.DurationSeconds = &duration
	}

	if chordSheet != nil {
		record.Key = chordSheet.Key
		record.Notes = chordSheet.Body
	}

	return record
}
