package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spyCSV = `date,open,high,low,close,volume
2025-01-03,100,101,99,100.5,1000
2025-01-02,99,100,98,99.5,1200
2025-01-06,100.5,102,100,101.5,900
not-a-date,1,1,1,1,1
2025-02-10,110,111,109,110,800
`

func TestLocalCSVDataProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SPY.csv"), []byte(spyCSV), 0644))

	start, end := testDateRange()
	bars, err := NewLocalCSVDataProvider(dir, nil).GetBars(context.Background(), "spy", start, end)
	require.NoError(t, err)

	require.Len(t, bars, 3)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 99.5, bars[0].Close)
	assert.Equal(t, 101.5, bars[2].Close)
	assert.Equal(t, 900.0, bars[2].Volume)
}

func TestLocalCSVDataProviderFallsBackToSecondary(t *testing.T) {
	start, end := testDateRange()
	prov := NewLocalCSVDataProvider(t.TempDir(), NewSyntheticProvider(5))

	bars, err := prov.GetBars(context.Background(), "QQQ", start, end)
	require.NoError(t, err)
	assert.NotEmpty(t, bars)

	_, err = NewLocalCSVDataProvider(t.TempDir(), nil).GetBars(context.Background(), "QQQ", start, end)
	assert.Error(t, err)
}
