package survey

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"commute-route-service/internal/domain"
)

const sample = `Timestamp,Building,Address,City,Way in,Way out
2022/03/01,HURRA (DBH eta BATXILERGOA),Zubieta Kalea 5,Donostia,Oinez / A pie,Oinez / A pie
2022/03/01, VILLA SOROA (HH) ,Ategorrieta 3,Donostia,Autoz / En coche ,Autoz / En coche
`

func TestReaderReadsRowsByHeaderName(t *testing.T) {
	r, err := NewReader(strings.NewReader(sample), Options{Encoding: "utf8"}, nil)
	require.NoError(t, err)

	got, err := r.ReadAll()
	require.NoError(t, err)

	want := []domain.Commute{
		{Row: 1, Building: "HURRA (DBH eta BATXILERGOA)", Address: "Zubieta Kalea 5", City: "Donostia", ModeLabel: "Oinez / A pie"},
		{Row: 2, Building: "VILLA SOROA (HH)", Address: "Ategorrieta 3", City: "Donostia", ModeLabel: "Autoz / En coche"},
	}
	assert.Equal(t, want, got)
}

func TestReaderDecodesLatin1(t *testing.T) {
	utf8 := "Building,Address,City,Way in\nHURRA,Plaza 1,Donostia,Autobusez / En autobús\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(utf8)
	require.NoError(t, err)

	r, err := NewReader(bytes.NewBufferString(latin1), DefaultOptions(), nil)
	require.NoError(t, err)

	c, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "Autobusez / En autobús", c.ModeLabel)

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderCustomColumnsAndDelimiter(t *testing.T) {
	in := "School;Street;Town;Mode\nA;1 Main St;Springfield;walk\n"
	opts := Options{
		Columns:   Columns{Building: "School", Address: "Street", City: "Town", Mode: "Mode"},
		Encoding:  "utf8",
		Delimiter: ';',
	}

	r, err := NewReader(strings.NewReader(in), opts, nil)
	require.NoError(t, err)

	c, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "1 Main St, Springfield", c.Origin())
}

func TestReaderMissingColumns(t *testing.T) {
	_, err := NewReader(strings.NewReader("Building,Address\n"), Options{Columns: DefaultColumns(), Encoding: "utf8"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"City"`)
	assert.Contains(t, err.Error(), `"Way in"`)
}

func TestReaderShortRow(t *testing.T) {
	in := "Building,Address,City,Way in\nHURRA,Plaza 1\n"
	r, err := NewReader(strings.NewReader(in), Options{Columns: DefaultColumns(), Encoding: "utf8"}, nil)
	require.NoError(t, err)

	_, err = r.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestReaderEmptyFile(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	got, err := ReadFile(path, Options{Columns: DefaultColumns(), Encoding: "utf8"}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions(), nil)
	assert.Error(t, err)
}
