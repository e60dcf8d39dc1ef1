package model

// Cookies selects how the fetch engine authenticates. File takes precedence
// over FromBrowser.
type Cookies struct {
	File        string `json:"file,omitempty"`
	FromBrowser string `json:"from_browser,omitempty"`
}

// IsZero reports whether no cookie source is configured.
func (c Cookies) IsZero() bool { return c.File == "" && c.FromBrowser == "" }

// FetchRequest describes one media download.
type FetchRequest struct {
	URL   string
	Audio bool
	// Format is the target container or codec extension without a dot.
	Format string
	// Recode forces a container conversion to Format for video downloads.
	Recode bool
	// OutputPath is the planned final path. The fetcher picks a free variant
	// of it before downloading.
	OutputPath string
	// Cookies overrides the fetcher's configured cookie source when non-nil.
	Cookies *Cookies
	// Thumbnail asks the fetcher to return the source thumbnail as Artwork.
	Thumbnail bool
}

// FetchHooks receives progress from a running download. Either func may be nil.
type FetchHooks struct {
	OnProgress    func(Progress)
	OnPostProcess func(name string)
}

// FetchResult is a completed download.
type FetchResult struct {
	Path          string
	Info          map[string]any
	Artwork       []byte
	ArtworkMIME   string
	PostProcessor string
}
