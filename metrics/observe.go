package metrics

import (
	"errors"
	"time"

	"github.com/Abraxas-365/kbloader/datasource"
)

// ObserveLoad records the outcome of one Load call for the named loader.
func ObserveLoad(loader string, start time.Time, count int, err error) {
	LoadDuration.WithLabelValues(loader).Observe(time.Since(start).Seconds())
	if err != nil {
		LoadErrors.WithLabelValues(loader, errorCode(err)).Inc()
		return
	}
	DocumentsLoaded.WithLabelValues(loader).Add(float64(count))
}

func errorCode(err error) string {
	var dsErr *datasource.DataSourceError
	if errors.As(err, &dsErr) && dsErr.Code != "" {
		return dsErr.Code
	}
	return datasource.ErrCodeInternal
}
