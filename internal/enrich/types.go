package enrich

// Record is the merged output of one enrichment: catalog metadata and the
// scraped chord sheet, each present only when its source produced a value.
type Record struct {
	Name            string `json:"name"`
	Artist          string `json:"artist"`
	Key             string `json:"key"`
	Notes           string `json:"notes"`
	BPM             *int   `json:"bpm"`
	DurationSeconds *int   `json:"durationSeconds"`
}

// SheetNotFoundNote is the placeholder stored in Notes when no chord sheet
// could be found for the song.
const SheetNotFoundNote = "chord sheet not found"
