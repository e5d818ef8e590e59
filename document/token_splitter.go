package document

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used for models tiktoken does not know.
const DefaultEncoding = "cl100k_base"

// TiktokenSplitter splits text into windows of TokensPerChunk tokens as
// counted by the model's tokenizer.
type TiktokenSplitter struct {
	TokensPerChunk int
	ChunkOverlap   int
	Model          string
	encoding       *tiktoken.Tiktoken
}

func NewTiktokenSplitter(tokensPerChunk int, chunkOverlap int, model string) (*TiktokenSplitter, error) {
	if err := validateSizes("NewTiktokenSplitter", tokensPerChunk, chunkOverlap); err != nil {
		return nil, err
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(DefaultEncoding)
		if err != nil {
			return nil, &SplitterError{
				Op:      "NewTiktokenSplitter",
				Message: fmt.Sprintf("failed to load %s encoding for model %q", DefaultEncoding, model),
				Err:     err,
			}
		}
	}

	return &TiktokenSplitter{
		TokensPerChunk: tokensPerChunk,
		ChunkOverlap:   chunkOverlap,
		Model:          model,
		encoding:       encoding,
	}, nil
}

// CountTokens returns the number of tokens text encodes to.
func (ts *TiktokenSplitter) CountTokens(text string) int {
	return len(ts.encoding.Encode(text, nil, nil))
}

func (ts *TiktokenSplitter) SplitText(text string) ([]string, error) {
	tokens := ts.encoding.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil, nil
	}

	step := ts.TokensPerChunk - ts.ChunkOverlap
	var chunks []string
	for start := 0; ; start += step {
		end := min(start+ts.TokensPerChunk, len(tokens))
		chunks = append(chunks, ts.encoding.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}
