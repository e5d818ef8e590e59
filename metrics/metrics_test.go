package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveLoad(t *testing.T) {
	ObserveLoad("metrics-test", time.Now(), 3, nil)
	require.Equal(t, 3.0, testutil.ToFloat64(DocumentsLoaded.WithLabelValues("metrics-test")))

	parseErr := datasource.NewError("f.json", "Load", datasource.ErrCodeParse, "bad json", nil)
	ObserveLoad("metrics-test", time.Now(), 0, parseErr)
	ObserveLoad("metrics-test", time.Now(), 0, errors.New("plain"))

	require.Equal(t, 1.0, testutil.ToFloat64(LoadErrors.WithLabelValues("metrics-test", datasource.ErrCodeParse)))
	require.Equal(t, 1.0, testutil.ToFloat64(LoadErrors.WithLabelValues("metrics-test", datasource.ErrCodeInternal)))
}
