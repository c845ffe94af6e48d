package models

import (
	"fmt"

	"github.com/google/uuid"
)

// EquipmentKind names one of the equipment lists.
type EquipmentKind string

const (
	KindTelescope EquipmentKind = "telescope"
	KindCamera    EquipmentKind = "camera"
	KindMount     EquipmentKind = "mount"
	KindFilter    EquipmentKind = "filter"
	KindFlattener EquipmentKind = "flattener"
)

// ParseEquipmentKind converts s into an EquipmentKind.
func ParseEquipmentKind(s string) (EquipmentKind, error) {
	switch k := EquipmentKind(s); k {
	case KindTelescope, KindCamera, KindMount, KindFilter, KindFlattener:
		return k, nil
	default:
		return "", fmt.Errorf("models: unknown equipment kind %q", s)
	}
}

// EquipmentBase holds the fields shared by every equipment item.
type EquipmentBase struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand" validate:"required"`
	Name  string    `json:"name" validate:"required"`
}

// ViewName is the display name used to detect duplicates.
func (b EquipmentBase) ViewName() string {
	return b.Brand + " " + b.Name
}

// Telescope is an optical tube.
type Telescope struct {
	EquipmentBase
	FocalLength float64 `json:"focal_length" validate:"gt=0"`
	Aperture    float64 `json:"aperture" validate:"gt=0"`
}

// Camera is an imaging camera.
type Camera struct {
	EquipmentBase
	ChipSize  string  `json:"chip_size" validate:"required"`
	MegaPixel float64 `json:"mega_pixel" validate:"gt=0"`
	RGB       bool    `json:"rgb"`
}

// Mount is a telescope mount.
type Mount struct {
	EquipmentBase
}

// Filter is an imaging filter.
type Filter struct {
	EquipmentBase
	FilterType string `json:"filter_type" validate:"required"`
}

// Flattener is a field flattener or reducer.
type Flattener struct {
	EquipmentBase
	Factor float64 `json:"factor" validate:"gt=0"`
}

// EquipmentList is the persisted equipment collection, one ordered list per
// kind.
type EquipmentList struct {
	TelescopeList []Telescope `json:"telescope_list"`
	CameraList    []Camera    `json:"camera_list"`
	MountList     []Mount     `json:"mount_list"`
	FilterList    []Filter    `json:"filter_list"`
	FlattenerList []Flattener `json:"flattener_list"`
}

// NewEquipmentList returns an empty list with every slice initialised so the
// JSON form never contains null.
func NewEquipmentList() EquipmentList {
	return EquipmentList{
		TelescopeList: []Telescope{},
		CameraList:    []Camera{},
		MountList:     []Mount{},
		FilterList:    []Filter{},
		FlattenerList: []Flattener{},
	}
}

// Normalize replaces nil slices with empty ones.
func (l *EquipmentList) Normalize() {
	if l.TelescopeList == nil {
		l.TelescopeList = []Telescope{}
	}
	if l.CameraList == nil {
		l.CameraList = []Camera{}
	}
	if l.MountList == nil {
		l.MountList = []Mount{}
	}
	if l.FilterList == nil {
		l.FilterList = []Filter{}
	}
	if l.FlattenerList == nil {
		l.FlattenerList = []Flattener{}
	}
}

// Bases returns the shared fields of every item in list order.
func (l *EquipmentList) Bases() []EquipmentBase {
	out := make([]EquipmentBase, 0,
		len(l.TelescopeList)+len(l.CameraList)+len(l.MountList)+len(l.FilterList)+len(l.FlattenerList))
	for _, t := range l.TelescopeList {
		out = append(out, t.EquipmentBase)
	}
	for _, c := range l.CameraList {
		out = append(out, c.EquipmentBase)
	}
	for _, m := range l.MountList {
		out = append(out, m.EquipmentBase)
	}
	for _, f := range l.FilterList {
		out = append(out, f.EquipmentBase)
	}
	for _, f := range l.FlattenerList {
		out = append(out, f.EquipmentBase)
	}
	return out
}

// ViewNames maps every equipment id to its view name.
func (l *EquipmentList) ViewNames() map[uuid.UUID]string {
	bases := l.Bases()
	out := make(map[uuid.UUID]string, len(bases))
	for _, b := range bases {
		out[b.ID] = b.ViewName()
	}
	return out
}

// HasViewName reports whether an item with the given view name exists.
func (l *EquipmentList) HasViewName(name string) bool {
	for _, b := range l.Bases() {
		if b.ViewName() == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (l EquipmentList) Clone() EquipmentList {
	return EquipmentList{
		TelescopeList: append([]Telescope{}, l.TelescopeList...),
		CameraList:    append([]Camera{}, l.CameraList...),
		MountList:     append([]Mount{}, l.MountList...),
		FilterList:    append([]Filter{}, l.FilterList...),
		FlattenerList: append([]Flattener{}, l.FlattenerList...),
	}
}

// Item is a pointer to one concrete equipment value.
type Item interface {
	Common() *EquipmentBase
	Kind() EquipmentKind
}

// Common returns the shared fields for editing.
func (b *EquipmentBase) Common() *EquipmentBase { return b }

func (*Telescope) Kind() EquipmentKind { return KindTelescope }
func (*Camera) Kind() EquipmentKind    { return KindCamera }
func (*Mount) Kind() EquipmentKind     { return KindMount }
func (*Filter) Kind() EquipmentKind    { return KindFilter }
func (*Flattener) Kind() EquipmentKind { return KindFlattener }

// NewItem returns a zero item of kind.
func NewItem(kind EquipmentKind) (Item, error) {
	switch kind {
	case KindTelescope:
		return &Telescope{}, nil
	case KindCamera:
		return &Camera{}, nil
	case KindMount:
		return &Mount{}, nil
	case KindFilter:
		return &Filter{}, nil
	case KindFlattener:
		return &Flattener{}, nil
	default:
		return nil, fmt.Errorf("models: unknown equipment kind %q", kind)
	}
}

// Add appends a copy of item to the list for its kind.
func (l *EquipmentList) Add(item Item) error {
	switch v := item.(type) {
	case *Telescope:
		l.TelescopeList = append(l.TelescopeList, *v)
	case *Camera:
		l.CameraList = append(l.CameraList, *v)
	case *Mount:
		l.MountList = append(l.MountList, *v)
	case *Filter:
		l.FilterList = append(l.FilterList, *v)
	case *Flattener:
		l.FlattenerList = append(l.FlattenerList, *v)
	default:
		return fmt.Errorf("models: unsupported equipment item %T", item)
	}
	return nil
}

// Items returns every item in list order. The items point into l.
func (l *EquipmentList) Items() []Item {
	out := make([]Item, 0,
		len(l.TelescopeList)+len(l.CameraList)+len(l.MountList)+len(l.FilterList)+len(l.FlattenerList))
	for i := range l.TelescopeList {
		out = append(out, &l.TelescopeList[i])
	}
	for i := range l.CameraList {
		out = append(out, &l.CameraList[i])
	}
	for i := range l.MountList {
		out = append(out, &l.MountList[i])
	}
	for i := range l.FilterList {
		out = append(out, &l.FilterList[i])
	}
	for i := range l.FlattenerList {
		out = append(out, &l.FlattenerList[i])
	}
	return out
}

// HasID reports whether any item carries id.
func (l *EquipmentList) HasID(id uuid.UUID) bool {
	for _, b := range l.Bases() {
		if b.ID == id {
			return true
		}
	}
	return false
}
