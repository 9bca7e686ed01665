package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"guard-monitor/backend/internal/domain/checkin"
)

var csvHeader = []string{"Funcionário", "Data", "Hora", "Endereço", "Latitude", "Longitude", "Dispositivo", "Foto"}

// WriteCSV serializes the record list as a flat CSV export. Empty input is
// refused: exports never produce an empty artifact.
func WriteCSV(w io.Writer, records []checkin.Record) error {
	if len(records) == 0 {
		return ErrNoData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Username,
			rec.Timestamp.Format("02/01/2006"),
			rec.Timestamp.Format("15:04"),
			rec.Address,
			strconv.FormatFloat(rec.Location.Latitude, 'f', 6, 64),
			strconv.FormatFloat(rec.Location.Longitude, 'f', 6, 64),
			rec.DeviceInfo,
			rec.PhotoURL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
