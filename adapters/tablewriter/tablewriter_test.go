package tablewriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprtsim/ports"
)

type stubEngine struct{ values []uint32 }

func (e *stubEngine) Uint32() uint32 {
	v := e.values[0]
	e.values = e.values[1:]
	return v
}
func (e *stubEngine) NormFloat64() float64 { return 0 }

func TestWriteProducesOneWorkbookPerTable(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)

	err := w.Write(ports.Table{
		Dir:  "run-1",
		Name: "double-1",
		Variables: map[string][][]float64{
			"ess_null": {{1, 2}, {3, 4}},
		},
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "run-1", "double-1.xlsx"))
	assert.NoError(t, statErr)
}

func TestReserveRunFolderRetriesOnCollision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "AAA-0-1"), 0o755))

	engine := &stubEngine{values: []uint32{0, 1}}
	name, err := ReserveRunFolder(dir, engine, "0-1")
	require.NoError(t, err)
	assert.NotEqual(t, "AAA-0-1", name)

	_, statErr := os.Stat(filepath.Join(dir, name))
	assert.NoError(t, statErr)
}
