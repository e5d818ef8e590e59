package document

import "strings"

// CharacterSplitter packs separator-delimited pieces into chunks of at most
// ChunkSize bytes. Consecutive chunks share trailing pieces totalling at most
// ChunkOverlap bytes. A single piece longer than ChunkSize becomes its own
// chunk.
type CharacterSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separator    string
}

func NewCharacterSplitter(chunkSize int, chunkOverlap int, separator string) (*CharacterSplitter, error) {
	if err := validateSizes("NewCharacterSplitter", chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	if separator == "" {
		separator = " "
	}

	return &CharacterSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separator:    separator,
	}, nil
}

func (cs *CharacterSplitter) SplitText(text string) ([]string, error) {
	var chunks []string
	var window []string
	size := 0
	sep := len(cs.Separator)

	emit := func() {
		if chunk := strings.TrimSpace(strings.Join(window, cs.Separator)); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range strings.Split(text, cs.Separator) {
		if strings.TrimSpace(part) == "" {
			continue
		}

		if len(window) > 0 && size+sep+len(part) > cs.ChunkSize {
			emit()
			for len(window) > 0 && (size > cs.ChunkOverlap || size+sep+len(part) > cs.ChunkSize) {
				size -= len(window[0])
				if len(window) > 1 {
					size -= sep
				}
				window = window[1:]
			}
		}

		if len(window) > 0 {
			size += sep
		}
		window = append(window, part)
		size += len(part)
	}

	if len(window) > 0 {
		emit()
	}
	return chunks, nil
}
