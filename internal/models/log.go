package models

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
)

// NotApplicable is how a Measure without a value is rendered.
const NotApplicable = "N/A"

// Measure is a numeric cell that may not apply to its row. An inapplicable
// measure serialises as "N/A" so it can never be read as a real zero.
type Measure struct {
	Value float64
	Valid bool
}

// Of returns an applicable measure.
func Of(v float64) Measure { return Measure{Value: v, Valid: true} }

// NA returns an inapplicable measure.
func NA() Measure { return Measure{} }

// String renders the measure for tables.
func (m Measure) String() string {
	if !m.Valid {
		return NotApplicable
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return json.Marshal(NotApplicable)
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`"`+NotApplicable+`"`)) {
		*m = NA()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Of(v)
	return nil
}

// LogTableRow is one flattened imaging session as shown in the session log.
type LogTableRow struct {
	ID                uuid.UUID `json:"id"`
	Date              string    `json:"date"`
	Target            string    `json:"target"`
	SubLength         float64   `json:"sub_length"`
	TotalSubs         int       `json:"total_subs"`
	IntegratedSubs    int       `json:"integrated_subs"`
	Filter            string    `json:"filter"`
	Gain              int       `json:"gain"`
	Offset            int       `json:"offset"`
	CameraTemp        float64   `json:"camera_temp"`
	OutsideTemp       float64   `json:"outside_temp"`
	AverageSeeing     float64   `json:"average_seeing"`
	AverageCloudCover float64   `json:"average_cloud_cover"`
	AverageMoon       float64   `json:"average_moon"`
	Telescope         string    `json:"telescope"`
	Flattener         string    `json:"flattener"`
	Mount             string    `json:"mount"`
	Camera            string    `json:"camera"`
	Notes             string    `json:"notes"`
}

// NewLogTableRow flattens a light frame. names maps equipment ids to view
// names; ids missing from it render as empty strings.
func NewLogTableRow(frame LightFrame, names map[uuid.UUID]string) LogTableRow {
	return LogTableRow{
		ID:                frame.ID,
		Date:              frame.Date,
		Target:            frame.Target,
		SubLength:         frame.SubLength,
		TotalSubs:         frame.TotalSubs,
		IntegratedSubs:    frame.IntegratedSubs,
		Filter:            names[frame.FilterID],
		Gain:              frame.Gain,
		Offset:            frame.Offset,
		CameraTemp:        frame.CameraTemp,
		OutsideTemp:       frame.OutsideTemp,
		AverageSeeing:     frame.AverageSeeing,
		AverageCloudCover: frame.AverageCloudCover,
		AverageMoon:       frame.AverageMoon,
		Telescope:         names[frame.TelescopeID],
		Flattener:         names[frame.FlattenerID],
		Mount:             names[frame.MountID],
		Camera:            names[frame.CameraID],
		Notes:             frame.Notes,
	}
}

// CalibrationTableRow is one calibration frame as shown in the calibration
// log.
type CalibrationTableRow struct {
	ID              uuid.UUID       `json:"id"`
	Camera          string          `json:"camera"`
	CalibrationType CalibrationKind `json:"calibration_type"`
	Gain            int             `json:"gain"`
	SubLength       Measure         `json:"sub_length"`
	CameraTemp      Measure         `json:"camera_temp"`
	TotalSubs       int             `json:"total_subs"`
}

// NewCalibrationTableRow flattens a calibration frame, selecting variant
// fields by its tag.
func NewCalibrationTableRow(frame CalibrationFrame, names map[uuid.UUID]string) CalibrationTableRow {
	row := CalibrationTableRow{
		ID:              frame.ID,
		Camera:          names[frame.CameraID],
		CalibrationType: frame.Kind,
		Gain:            frame.Gain,
		TotalSubs:       frame.TotalSubs,
		SubLength:       NA(),
		CameraTemp:      NA(),
	}

	switch frame.Kind {
	case CalibrationDark:
		if frame.Dark != nil {
			row.SubLength = Of(frame.Dark.SubLength)
			row.CameraTemp = Of(frame.Dark.CameraTemp)
		}
	case CalibrationBias, CalibrationFlat:
		// no variant fields
	default:
		// future variant: leave as not applicable
	}
	return row
}
