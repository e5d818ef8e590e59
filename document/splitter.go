package document

// ChunkKey is the metadata key holding a chunk's 0-based position within
// its source document.
const ChunkKey = "chunk"

// Splitter interface defines methods for splitting text into chunks
type Splitter interface {
	SplitText(text string) ([]string, error)
}

// SplitDocuments splits every document and returns the chunks in order.
// Each chunk gets its own copy of the document metadata plus ChunkKey.
func SplitDocuments(splitter Splitter, documents []Document) ([]Document, error) {
	var out []Document
	for _, doc := range documents {
		chunks, err := splitter.SplitText(doc.PageContent)
		if err != nil {
			return nil, &SplitterError{Op: "SplitDocuments", Message: "failed to split document text", Err: err}
		}
		for i, chunk := range chunks {
			metadata := copyMetadata(doc.Metadata)
			metadata[ChunkKey] = i
			out = append(out, Document{PageContent: chunk, Metadata: metadata})
		}
	}
	return out, nil
}
