package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guard-monitor/backend/internal/domain/checkin"
)

func TestWriteCSV_EmptyIsRefused(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, nil)
	assert.True(t, IsErrNoData(err))
	assert.Zero(t, buf.Len())
}

func TestWriteCSV_Rows(t *testing.T) {
	records := []checkin.Record{
		{
			ID:         "a",
			Username:   "Carlos Silva",
			Timestamp:  time.Date(2024, 3, 11, 8, 30, 0, 0, time.Local),
			Location:   checkin.Location{Latitude: -23.5505, Longitude: -46.6333},
			Address:    "Av. Paulista, 1000",
			DeviceInfo: "Samsung A52",
			PhotoURL:   "https://storage.example.com/p.jpg",
		},
		{
			ID:         "b",
			Username:   checkin.UnidentifiedUser,
			Timestamp:  time.Date(2024, 3, 10, 22, 5, 0, 0, time.Local),
			Address:    checkin.AddressPending,
			DeviceInfo: checkin.UnknownDevice,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"Carlos Silva", "11/03/2024", "08:30", "Av. Paulista, 1000",
		"-23.550500", "-46.633300", "Samsung A52", "https://storage.example.com/p.jpg",
	}, rows[1])
	assert.Equal(t, "22:05", rows[2][2])
	assert.Equal(t, "0.000000", rows[2][4])
}
