package storage

import (
	"fmt"

	"github.com/docbricks/docbricks/internal/domain"
)

// LoadDocumentText returns the text to ingest for a markdown file name,
// preferring the user-edited version over the parsed one.
func (f *FileStore) LoadDocumentText(name string) (string, domain.Metadata, error) {
	base := BaseName(name)
	mdName := base + ".md"

	for _, dir := range []Dir{DirEdited, DirParsed} {
		if !f.Exists(dir, mdName) {
			continue
		}
		data, err := f.Load(dir, mdName)
		if err != nil {
			return "", domain.Metadata{}, err
		}
		return string(data), domain.Metadata{
			SourceName: name,
			FileName:   base,
			FilePath:   fmt.Sprintf("%s/%s", dir, mdName),
		}, nil
	}

	return "", domain.Metadata{}, fmt.Errorf("no parsed or edited text for %s: %w", name, domain.ErrFileNotFound)
}
