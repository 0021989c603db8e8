package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceFilter_Validate(t *testing.T) {
	f := AttendanceFilter{SortOrder: "ASC"}
	require.NoError(t, f.Validate())
	assert.Equal(t, "asc", f.SortOrder)
	assert.Equal(t, "date", f.SortBy)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	f = AttendanceFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, "desc", f.SortOrder)

	bad := "absent"
	f = AttendanceFilter{SortOrder: "sideways", Status: &bad}
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sort_order")
	assert.Contains(t, err.Error(), "status")
}
