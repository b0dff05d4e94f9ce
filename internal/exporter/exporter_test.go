package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"licensekey/internal/batch"
)

func sampleIssued() []batch.Issued {
	return []batch.Issued{
		{Seed: 12345, Identity: "acme", Text: "0000000000003039b2ceb8da552e"},
		{Seed: ^uint64(0), Identity: "", Text: "ffffffffffffffff00000000aaaa"},
		{Seed: 7, Identity: "Müller, GmbH", Text: "0000000000000007deadbeef0102"},
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "keys.csv")
	require.NoError(t, Export(path, sampleIssued()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, data[:3], "CSV starts with a BOM")

	rows, err := readCSVRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"12345", "acme", "0000000000003039b2ceb8da552e"}, rows[1])
	assert.Equal(t, "18446744073709551615", rows[2][0])
	assert.Equal(t, "Müller, GmbH", rows[3][1])
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.xlsx")
	require.NoError(t, Export(path, sampleIssued()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "18446744073709551615", rows[2][0], "seeds keep full precision")
	assert.Equal(t, "0000000000000007deadbeef0102", rows[3][2])
}

func TestExportEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.csv")
	require.NoError(t, Export(path, nil))

	rows, err := readCSVRows(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Columns}, rows)
}

func TestExportUnsupported(t *testing.T) {
	err := Export(filepath.Join(t.TempDir(), "keys.json"), sampleIssued())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.csv")
	issued := sampleIssued()

	require.NoError(t, AppendCSV(path, issued[:1]))
	require.NoError(t, AppendCSV(path, issued[1:]))

	rows, err := readCSVRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header written once")
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "acme", rows[1][1])
	assert.Equal(t, "7", rows[3][0])

	err = AppendCSV(filepath.Join(t.TempDir(), "keys.xlsx"), issued)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteCSVTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.csv")
	require.NoError(t, WriteCSV(path, WriteOptions{Records: [][]string{{"a"}, {"b"}}}))
	require.NoError(t, WriteCSV(path, WriteOptions{Records: [][]string{{"c"}}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c\n", string(data))
}

func TestReadIdentities(t *testing.T) {
	dir := t.TempDir()

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "ids.txt")
		require.NoError(t, os.WriteFile(path, []byte("alice\n\n  bob  \ncarol"), 0o600))

		ids, err := ReadIdentities(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob", "carol"}, ids)
	})

	t.Run("csv with header", func(t *testing.T) {
		path := filepath.Join(dir, "ids.csv")
		require.NoError(t, WriteCSV(path, WriteOptions{
			Headers:   []string{"Identity", "note"},
			Records:   [][]string{{"alice", "x"}, {"", "skip"}, {"bob"}},
			BOMPrefix: true,
		}))

		ids, err := ReadIdentities(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, ids)
	})

	t.Run("xlsx export round trip", func(t *testing.T) {
		path := filepath.Join(dir, "ids.xlsx")
		w, err := NewXLSXStreamWriter(path, []string{"identity"})
		require.NoError(t, err)
		require.NoError(t, w.WriteRecord([]string{"alice"}))
		require.NoError(t, w.WriteRecord([]string{"bob"}))
		require.NoError(t, w.Close())

		ids, err := ReadIdentities(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, ids)
	})

	t.Run("export as input", func(t *testing.T) {
		path := filepath.Join(dir, "keys.csv")
		require.NoError(t, Export(path, sampleIssued()))

		ids, err := ReadIdentities(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"acme", "Müller, GmbH"}, ids)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadIdentities(filepath.Join(dir, "nope.txt"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
