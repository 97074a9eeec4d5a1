package catalog

// TrackMetadata is the resolved output for one song query.
type TrackMetadata struct {
	Title           string
	Artist          string // Comma-separated artist names
	DurationSeconds int
	BPM             *int // nil when the catalog has no tempo analysis
}
