package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, Sheet{
		Name:    "Attendance",
		Headers: []string{"Employee", "Date", "Delay"},
		Widths:  []float64{24, 12},
		Rows: [][]interface{}{
			{"Ayu", "2025-01-06", 0},
			{"Budi", "2025-01-06", 12},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Employee", "Date", "Delay"}, rows[0])
	assert.Equal(t, []string{"Budi", "2025-01-06", "12"}, rows[2])
}

func TestWriteXLSX_EmptySheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Sheet{Headers: []string{"Only"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Only"}}, rows)
}
