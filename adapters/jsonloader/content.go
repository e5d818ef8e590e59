package jsonloader

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/Abraxas-365/kbloader/jsonquery"
)

// document derives content and metadata for the seq-th matched record.
func (l *Loader) document(record any, seq int) (datasource.Document, error) {
	name := l.source.Name()
	metadata := make(map[string]interface{})

	content := record
	if key := l.opts.ContentKey; key != "" {
		if fields, ok := record.(map[string]any); ok {
			content = fields[key]
			for k, v := range fields {
				if k != key {
					metadata[k] = v
				}
			}
		}
	}
	metadata["source"] = name
	metadata["seq_num"] = seq

	text, err := l.text(content, seq)
	if err != nil {
		return datasource.Document{}, err
	}

	if l.opts.MetadataFunc != nil {
		metadata = l.opts.MetadataFunc(record, metadata)
		if metadata == nil {
			metadata = make(map[string]interface{})
		}
	}

	return datasource.Document{
		Content:  text,
		Metadata: metadata,
		Source:   name,
	}, nil
}

func (l *Loader) text(content any, seq int) (string, error) {
	switch v := content.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(v), nil
	case *big.Int:
		return v.String(), nil
	case float64:
		return jsonquery.FormatFloat(v), nil
	case map[string]any:
		return l.compound(v, len(v), "object", seq)
	case []any:
		return l.compound(v, len(v), "array", seq)
	default:
		return fmt.Sprint(v), nil
	}
}

func (l *Loader) compound(v any, size int, kind string, seq int) (string, error) {
	if l.opts.TextContent {
		return "", datasource.NewError(l.source.Name(), "Load", datasource.ErrCodeInvalidContent,
			fmt.Sprintf("record %d: expected string, number or boolean content, got %s", seq, kind), nil)
	}
	if size == 0 {
		return "", nil
	}
	text, err := jsonquery.EncodeText(v)
	if err != nil {
		return "", datasource.NewError(l.source.Name(), "Load", datasource.ErrCodeInvalidContent,
			fmt.Sprintf("record %d: cannot encode %s content", seq, kind), err)
	}
	return text, nil
}
