package model

// Chapter is a single timestamp-label pair, e.g. "04:00" / "Deep dive".
type Chapter struct {
	Offset string
	Label  string
}

// Metadata holds the publishing metadata for one video. Chapters are only
// populated, and auto-chapters only disabled, when the source runs longer
// than five minutes.
type Metadata struct {
	Title               string
	Description         string
	Chapters            []Chapter
	DisableAutoChapters bool
}
