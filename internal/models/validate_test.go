package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTelescope(t *testing.T) {
	err := Validate(Telescope{EquipmentBase: EquipmentBase{Brand: "Sky-Watcher"}, FocalLength: 550})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, "required", fields["Telescope.EquipmentBase.Name"])
	assert.Equal(t, "gt", fields["Telescope.Aperture"])
}

func TestValidateAcceptsCompleteItems(t *testing.T) {
	assert.NoError(t, Validate(Mount{EquipmentBase: EquipmentBase{Brand: "Sky-Watcher", Name: "EQ6-R Pro"}}))
	assert.NoError(t, Validate(Image{Title: "M42", Path: "/img/m42.tif", TotalExposure: 3600}))
	assert.NoError(t, Validate(DefaultPreferences()))
}

func TestValidatePreferencesEmail(t *testing.T) {
	p := DefaultPreferences()
	p.License.UserEmail = "not-an-email"
	assert.Error(t, Validate(p))
}

func TestEquipmentViewNames(t *testing.T) {
	list := NewEquipmentList()
	list.CameraList = append(list.CameraList, Camera{EquipmentBase: EquipmentBase{Brand: "ZWO", Name: "ASI533MC"}})

	assert.True(t, list.HasViewName("ZWO ASI533MC"))
	assert.False(t, list.HasViewName("ZWO ASI2600MC"))

	kind, err := ParseEquipmentKind("camera")
	require.NoError(t, err)
	assert.Equal(t, KindCamera, kind)
	_, err = ParseEquipmentKind("dew-heater")
	assert.Error(t, err)
}

func TestEquipmentItemsAndIDs(t *testing.T) {
	list := NewEquipmentList()
	scope := Telescope{EquipmentBase: EquipmentBase{ID: uuid.New(), Brand: "Sky-Watcher", Name: "Esprit"}, FocalLength: 550, Aperture: 100}
	mount := Mount{EquipmentBase: EquipmentBase{ID: uuid.New(), Brand: "iOptron"}}
	require.NoError(t, list.Add(&scope))
	require.NoError(t, list.Add(&mount))

	items := list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, KindTelescope, items[0].Kind())
	assert.Equal(t, KindMount, items[1].Kind())
	assert.NoError(t, Validate(items[0]))
	assert.Error(t, Validate(items[1]), "a mount without a name is rejected")

	items[1].Common().Name = "CEM40"
	assert.Equal(t, "CEM40", list.MountList[0].Name, "items alias the list")

	assert.True(t, list.HasID(scope.ID))
	assert.False(t, list.HasID(uuid.New()))
}
