package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestIsSupportedExtension(t *testing.T) {
	for _, ext := range []string{"csv", "xlsx", "xls", "json"} {
		require.True(t, IsSupportedExtension(ext), ext)
	}
	require.False(t, IsSupportedExtension("txt"))
	require.False(t, IsSupportedExtension(""))
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load([]byte("whatever"), "txt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "txt")
}

func TestLoadCSV(t *testing.T) {
	frame, err := Load([]byte(employeesCSV), "csv")
	require.NoError(t, err)

	require.Equal(t, []string{"name", "age", "salary", "department"}, frame.Columns)
	require.Equal(t, 3, frame.NumRows())
	require.Equal(t, []string{"John", "30", "50000", "Engineering"}, frame.Rows[0])
}

func TestLoadCSVEmpty(t *testing.T) {
	frame, err := Load(nil, "csv")
	require.NoError(t, err)
	require.Empty(t, frame.Columns)
	require.Equal(t, 0, frame.NumRows())
}

func TestLoadCSVRaggedRows(t *testing.T) {
	frame, err := Load([]byte("a,b,c\n1,2\n4,5,6,7\n"), "csv")
	require.NoError(t, err)

	require.Equal(t, []string{"1", "2", ""}, frame.Rows[0])
	require.Equal(t, []string{"4", "5", "6"}, frame.Rows[1])
}

func TestLoadJSONPreservesColumnOrder(t *testing.T) {
	frame, err := Load([]byte(employeesJSON), "json")
	require.NoError(t, err)

	require.Equal(t, []string{"name", "age", "salary", "department"}, frame.Columns)
	require.Equal(t, []string{"Jane", "25", "60000", "Marketing"}, frame.Rows[1])
}

func TestLoadJSONCanonicalNumbers(t *testing.T) {
	frame, err := Load([]byte(`[{"n": 30.0, "m": 3e1, "s": "30"}]`), "json")
	require.NoError(t, err)

	require.Equal(t, []string{"30", "30", "30"}, frame.Rows[0])
}

func TestLoadJSONLateColumns(t *testing.T) {
	frame, err := Load([]byte(`[{"a": 1}, {"a": 2, "b": "x"}]`), "json")
	require.NoError(t, err)

	require.Equal(t, []string{"a", "b"}, frame.Columns)
	require.Equal(t, []string{"1", ""}, frame.Rows[0])
	require.Equal(t, []string{"2", "x"}, frame.Rows[1])
}

func TestLoadJSONRejectsNonArray(t *testing.T) {
	_, err := Load([]byte(`{"a": 1}`), "json")
	require.Error(t, err)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"name", "age", "salary", "department"},
		{"John", 30, 50000, "Engineering"},
		{"Jane", 25, 60000, "Marketing"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	frame, err := Load(buf.Bytes(), "xlsx")
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age", "salary", "department"}, frame.Columns)
	require.Equal(t, 2, frame.NumRows())
	require.Equal(t, []string{"John", "30", "50000", "Engineering"}, frame.Rows[0])
}

func TestLoadXLSRejectsGarbage(t *testing.T) {
	_, err := Load([]byte("not an xls file"), "xls")
	require.Error(t, err)
}
