package domain

// Metadata describes where a document's text came from.
type Metadata struct {
	SourceName string // original file name, extension included
	FileName   string // base name without extension
	FilePath   string // pipeline path the text was loaded from
}
