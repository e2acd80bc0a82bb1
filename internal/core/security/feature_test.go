package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeature(t *testing.T) {
	f, err := ParseFeature("sales")
	require.NoError(t, err)
	assert.Equal(t, FeatureSales, f)

	_, err = ParseFeature("payroll")
	assert.Error(t, err)

	_, err = ParseFeature("")
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("edit")
	require.NoError(t, err)
	assert.Equal(t, ActionEdit, a)

	_, err = ParseAction("execute")
	assert.Error(t, err)
}

func TestPermissionSet_Allows(t *testing.T) {
	ps := PermissionSet{CanView: true, CanEdit: true}

	assert.True(t, ps.Allows(ActionView))
	assert.True(t, ps.Allows(ActionEdit))
	assert.False(t, ps.Allows(ActionCreate))
	assert.False(t, ps.Allows(ActionDelete))
	assert.False(t, ps.Allows("execute"), "unknown actions deny")

	assert.True(t, FullAccess().Allows(ActionDelete))
	assert.False(t, ViewOnly().Allows(ActionDelete))
	assert.True(t, PermissionSet{}.IsEmpty())
	assert.False(t, ViewOnly().IsEmpty())
}
