// Package document splits loaded documents into chunks sized for embedding.
package document

import "github.com/Abraxas-365/kbloader/datasource"

// Document represents a text document with metadata
type Document struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// FromDataSource converts loaded documents. Metadata maps are copied and
// carry a "source" entry taken from the document when the loader did not
// set one.
func FromDataSource(docs []datasource.Document) []Document {
	out := make([]Document, len(docs))
	for i, doc := range docs {
		metadata := copyMetadata(doc.Metadata)
		if _, ok := metadata["source"]; !ok && doc.Source != "" {
			metadata["source"] = doc.Source
		}
		out[i] = Document{PageContent: doc.Content, Metadata: metadata}
	}
	return out
}

func copyMetadata(metadata map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
