// Package apify loads datasets produced by Apify web scraping and crawling
// actors.
package apify

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/Abraxas-365/kbloader/log"
	"github.com/Abraxas-365/kbloader/metrics"
)

const loaderName = "apify"

// MappingFunc converts one dataset item into a document.
type MappingFunc func(item map[string]any) (datasource.Document, error)

// DatasetLoader loads every item of one Apify dataset.
type DatasetLoader struct {
	client    *Client
	datasetID string
	mapping   MappingFunc
	pageSize  int
}

// NewDatasetLoader creates a loader for datasetID. client and mapping are
// required.
func NewDatasetLoader(client *Client, datasetID string, mapping MappingFunc) (*DatasetLoader, error) {
	if client == nil {
		return nil, datasource.NewError(loaderName, "NewDatasetLoader", datasource.ErrCodeInvalidSource, "client is required", nil)
	}
	if datasetID == "" {
		return nil, datasource.NewError(loaderName, "NewDatasetLoader", datasource.ErrCodeInvalidSource, "dataset ID is required", nil)
	}
	if mapping == nil {
		return nil, datasource.NewError(loaderName, "NewDatasetLoader", datasource.ErrCodeInvalidSource, "mapping function is required", nil)
	}
	return &DatasetLoader{
		client:    client,
		datasetID: datasetID,
		mapping:   mapping,
		pageSize:  1000,
	}, nil
}

// WithPageSize changes how many items are requested per API call.
func (l *DatasetLoader) WithPageSize(size int) *DatasetLoader {
	if size > 0 {
		l.pageSize = size
	}
	return l
}

// Load pages through the clean items of the dataset and maps each of them.
func (l *DatasetLoader) Load(ctx context.Context, opts ...datasource.Option) (docs []datasource.Document, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveLoad(loaderName, start, len(docs), err)
	}()

	options := datasource.NewLoadOptions(opts...)
	logger := log.Ctx(ctx).With("dataset_id", l.datasetID)

	offset := 0
	for !options.Full(len(docs)) {
		page, err := l.client.ListItems(ctx, l.datasetID, ListOptions{
			Clean:  true,
			Offset: offset,
			Limit:  l.pageSize,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("apify page fetched", "offset", offset, "count", len(page.Items), "total", page.Total)

		for i, item := range page.Items {
			doc, err := l.mapping(item)
			if err != nil {
				return nil, datasource.NewError("apify:"+l.datasetID, "Load", datasource.ErrCodeInvalidFormat,
					fmt.Sprintf("mapping failed for item %d", offset+i), err)
			}
			if !options.Keep(doc.Metadata) {
				continue
			}
			docs = append(docs, doc)
			if options.Full(len(docs)) {
				break
			}
		}

		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			break
		}
	}

	return docs, nil
}
