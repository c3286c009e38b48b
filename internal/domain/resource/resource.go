package resource

import "strings"

// UntitledPlaceholder replaces empty provider titles.
const UntitledPlaceholder = "Sin título"

// Source identifies the provider an item came from.
type Source string

// Known sources.
const (
	SourceOpenLibrary Source = "openlibrary"
	SourceArxiv       Source = "arxiv"
	SourceGoogle      Source = "google"
	SourceYouTube     Source = "youtube"
	SourceVimeo       Source = "vimeo"
)

// Kind is the resource type tag.
type Kind string

// Resource kinds.
const (
	KindBook  Kind = "book"
	KindPaper Kind = "paper"
	KindPDF   Kind = "pdf"
	KindVideo Kind = "video"
)

// Item is a normalized educational resource returned by a provider.
// Exactly one of the variant payloads (Book, Paper, Document, Video) is set, matching Kind.
type Item struct {
	Source      Source `json:"source"`
	Kind        Kind   `json:"type"`
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`

	Book     *Book     `json:"book,omitempty"`
	Paper    *Paper    `json:"paper,omitempty"`
	Document *Document `json:"document,omitempty"`
	Video    *Video    `json:"video,omitempty"`
}

// Book is the book catalog payload.
type Book struct {
	Author    string   `json:"author"`
	Year      int      `json:"year,omitempty"`
	Languages []string `json:"languages,omitempty"`
	ReadURL   string   `json:"read_url,omitempty"`
}

// Paper is the paper catalog payload.
type Paper struct {
	Summary string `json:"summary"`
	PDFURL  string `json:"pdf_url,omitempty"`
}

// Document is the document search payload.
type Document struct {
	Snippet string `json:"snippet"`
	PDFURL  string `json:"pdf_url,omitempty"`
}

// Video is the video catalog payload.
type Video struct {
	VideoID     string `json:"video_id"`
	Channel     string `json:"channel,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	EmbedURL    string `json:"embed_url,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Platform    string `json:"platform"`
}

// PDFURL returns the direct PDF link of the item, if any.
func (i *Item) PDFURL() string {
	switch {
	case i.Paper != nil:
		return i.Paper.PDFURL
	case i.Document != nil:
		return i.Document.PDFURL
	}
	return ""
}

// DedupKey returns the key used to detect the same resource across providers:
// url, else id, else pdf_url. ok is false when none is set; such items are never duplicates.
func (i *Item) DedupKey() (key string, ok bool) {
	if i.URL != "" {
		return i.URL, true
	}
	if i.ID != "" {
		return i.ID, true
	}
	if pdf := i.PDFURL(); pdf != "" {
		return pdf, true
	}
	return "", false
}

// Title normalizes a provider title, falling back to UntitledPlaceholder.
func Title(raw string) string {
	t := strings.Join(strings.Fields(raw), " ")
	if t == "" {
		return UntitledPlaceholder
	}
	return t
}
