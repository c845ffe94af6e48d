package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// LightFrame is a stack of exposures of the session target.
type LightFrame struct {
	ID                uuid.UUID `json:"id"`
	Date              string    `json:"date"`
	Target            string    `json:"target"`
	SubLength         float64   `json:"sub_length"`
	TotalSubs         int       `json:"total_subs"`
	IntegratedSubs    int       `json:"integrated_subs"`
	Gain              int       `json:"gain"`
	Offset            int       `json:"offset"`
	CameraTemp        float64   `json:"camera_temp"`
	OutsideTemp       float64   `json:"outside_temp"`
	AverageSeeing     float64   `json:"average_seeing"`
	AverageCloudCover float64   `json:"average_cloud_cover"`
	AverageMoon       float64   `json:"average_moon"`
	TelescopeID       uuid.UUID `json:"telescope_id"`
	FlattenerID       uuid.UUID `json:"flattener_id"`
	MountID           uuid.UUID `json:"mount_id"`
	CameraID          uuid.UUID `json:"camera_id"`
	FilterID          uuid.UUID `json:"filter_id"`
	Notes             string    `json:"notes"`
}

// CalibrationKind is the variant tag of a calibration frame.
type CalibrationKind string

const (
	CalibrationDark CalibrationKind = "dark"
	CalibrationBias CalibrationKind = "bias"
	CalibrationFlat CalibrationKind = "flat"
)

// Known reports whether k is a variant this build understands.
func (k CalibrationKind) Known() bool {
	switch k {
	case CalibrationDark, CalibrationBias, CalibrationFlat:
		return true
	default:
		return false
	}
}

// CalibrationCommon holds the fields every calibration variant carries.
type CalibrationCommon struct {
	ID        uuid.UUID `json:"id"`
	CameraID  uuid.UUID `json:"camera_id"`
	Gain      int       `json:"gain"`
	TotalSubs int       `json:"total_subs"`
}

// DarkFields are the fields only dark frames carry.
type DarkFields struct {
	SubLength  float64 `json:"sub_length"`
	CameraTemp float64 `json:"camera_temp"`
}

// CalibrationFrame is a closed tagged union over the calibration variants.
// Dark is non-nil exactly when Kind is CalibrationDark. A frame whose tag is
// not Known keeps its original JSON so it survives a save unchanged.
type CalibrationFrame struct {
	Kind CalibrationKind
	CalibrationCommon
	Dark *DarkFields

	raw json.RawMessage
}

// NewDarkFrame builds a dark calibration frame.
func NewDarkFrame(common CalibrationCommon, dark DarkFields) CalibrationFrame {
	return CalibrationFrame{Kind: CalibrationDark, CalibrationCommon: common, Dark: &dark}
}

// NewBiasFrame builds a bias calibration frame.
func NewBiasFrame(common CalibrationCommon) CalibrationFrame {
	return CalibrationFrame{Kind: CalibrationBias, CalibrationCommon: common}
}

// NewFlatFrame builds a flat calibration frame.
func NewFlatFrame(common CalibrationCommon) CalibrationFrame {
	return CalibrationFrame{Kind: CalibrationFlat, CalibrationCommon: common}
}

type calibrationWire struct {
	Type CalibrationKind `json:"type"`
	CalibrationCommon
	SubLength  *float64 `json:"sub_length,omitempty"`
	CameraTemp *float64 `json:"camera_temp,omitempty"`
}

// MarshalJSON writes the frame as a flat object tagged by "type".
func (f CalibrationFrame) MarshalJSON() ([]byte, error) {
	if !f.Kind.Known() && len(f.raw) > 0 {
		return f.raw, nil
	}
	w := calibrationWire{Type: f.Kind, CalibrationCommon: f.CalibrationCommon}
	if f.Kind == CalibrationDark {
		if f.Dark == nil {
			return nil, fmt.Errorf("models: dark frame %s has no dark fields", f.ID)
		}
		w.SubLength = &f.Dark.SubLength
		w.CameraTemp = &f.Dark.CameraTemp
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a tagged frame. Unknown tags are accepted and kept.
func (f *CalibrationFrame) UnmarshalJSON(data []byte) error {
	var w calibrationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*f = CalibrationFrame{Kind: w.Type, CalibrationCommon: w.CalibrationCommon}
	switch w.Type {
	case CalibrationDark:
		d := DarkFields{}
		if w.SubLength != nil {
			d.SubLength = *w.SubLength
		}
		if w.CameraTemp != nil {
			d.CameraTemp = *w.CameraTemp
		}
		f.Dark = &d
	case CalibrationBias, CalibrationFlat:
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		f.raw = buf.Bytes()
	}
	return nil
}

// ImagingFrameList is the persisted frame collection.
type ImagingFrameList struct {
	LightFrameList       []LightFrame       `json:"light_frame_list"`
	CalibrationFrameList []CalibrationFrame `json:"calibration_frame_list"`
}

// NewImagingFrameList returns an empty frame list.
func NewImagingFrameList() ImagingFrameList {
	return ImagingFrameList{
		LightFrameList:       []LightFrame{},
		CalibrationFrameList: []CalibrationFrame{},
	}
}

// Normalize replaces nil slices with empty ones.
func (l *ImagingFrameList) Normalize() {
	if l.LightFrameList == nil {
		l.LightFrameList = []LightFrame{}
	}
	if l.CalibrationFrameList == nil {
		l.CalibrationFrameList = []CalibrationFrame{}
	}
}

// LightFrame looks up a light frame by id.
func (l *ImagingFrameList) LightFrame(id uuid.UUID) (LightFrame, bool) {
	for _, f := range l.LightFrameList {
		if f.ID == id {
			return f, true
		}
	}
	return LightFrame{}, false
}

// Clone returns a deep copy.
func (l ImagingFrameList) Clone() ImagingFrameList {
	out := ImagingFrameList{
		LightFrameList:       append([]LightFrame{}, l.LightFrameList...),
		CalibrationFrameList: make([]CalibrationFrame, len(l.CalibrationFrameList)),
	}
	for i, f := range l.CalibrationFrameList {
		if f.Dark != nil {
			d := *f.Dark
			f.Dark = &d
		}
		f.raw = append(json.RawMessage(nil), f.raw...)
		out.CalibrationFrameList[i] = f
	}
	return out
}
