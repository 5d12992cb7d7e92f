package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"landtrend/ports"
)

func TestWriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonal.xlsx")
	w := NewZonalWriter(path)

	records := []ports.TractRecord{
		{
			GEOID: "17031010100",
			BandMedians: map[string]float64{
				"ndvi_sen_slope": 0.06,
				"lst_sen_slope":  0.15,
			},
			MedianNDVI: 0.18,
			MedianLST:  295.2,
			GreenArea:  3600,
		},
		{
			GEOID:       "17031010200",
			BandMedians: map[string]float64{"ndvi_sen_slope": -0.01},
		},
	}
	require.NoError(t, w.WriteTable(context.Background(), records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Band columns are alphabetical, so lst_sen_slope precedes ndvi_sen_slope.
	assert.Equal(t, []string{
		"GEOID", "lst_sen_slope", "ndvi_sen_slope",
		"medianNDVI", "medianLST", "greenArea", "waterArea", "urbanArea",
	}, rows[0])
	assert.Equal(t, "17031010100", rows[1][0])
	assert.Equal(t, "0.15", rows[1][1])
	assert.Equal(t, "0.06", rows[1][2])

	// The second tract lacks an lst median; its cell holds the zero value.
	assert.Equal(t, "17031010200", rows[2][0])
	assert.Equal(t, "0", rows[2][1])
}

func TestWriteTableRejectsEmptyInput(t *testing.T) {
	w := NewZonalWriter(filepath.Join(t.TempDir(), "zonal.xlsx"))
	require.Error(t, w.WriteTable(context.Background(), nil))
}

func TestWriteTableCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewZonalWriter(filepath.Join(t.TempDir(), "zonal.xlsx"))
	require.Error(t, w.WriteTable(ctx, []ports.TractRecord{{GEOID: "x"}}))
}
