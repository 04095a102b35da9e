// Package tablewriter implements ports.Writer by rendering each labeled
// table as one xlsx workbook, one sheet per variable.
package tablewriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sprtsim/domain/core"
	apperr "sprtsim/internal/errors"
	"sprtsim/ports"
)

// Writer writes ports.Table values as xlsx workbooks under BaseDir.
type Writer struct {
	BaseDir string
}

// New constructs a Writer rooted at baseDir. baseDir is created lazily, on
// first write.
func New(baseDir string) *Writer {
	return &Writer{BaseDir: baseDir}
}

// Write renders table as one workbook: table.Dir/table.Name.xlsx, one sheet
// per entry of table.Variables, the matrix written row-major starting at
// A1. Returns an apperr.Resource error on any filesystem failure.
func (w *Writer) Write(table ports.Table) error {
	dir := filepath.Join(w.BaseDir, table.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Resource(fmt.Sprintf("creating output directory %s", dir), err)
	}

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for label, matrix := range table.Variables {
		sheet := label
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return apperr.Resource(fmt.Sprintf("naming sheet %s", sheet), err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return apperr.Resource(fmt.Sprintf("creating sheet %s", sheet), err)
		}
		for i, row := range matrix {
			for j, value := range row {
				axis, err := excelize.CoordinatesToCellName(j+1, i+1)
				if err != nil {
					return apperr.Resource(fmt.Sprintf("computing cell address for %s[%d][%d]", sheet, i, j), err)
				}
				if err := f.SetCellValue(sheet, axis, value); err != nil {
					return apperr.Resource(fmt.Sprintf("writing %s[%d][%d]", sheet, i, j), err)
				}
			}
		}
	}

	path := filepath.Join(dir, table.Name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return apperr.Resource(fmt.Sprintf("saving %s", path), err)
	}
	return nil
}

const (
	letters        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	prefixSpace    = 26 * 26 * 26
	maxPrefixTries = prefixSpace * 4
)

// ReserveRunFolder draws a unique 3-letter prefix via engine, joins it with
// the canonical model string, and creates the directory under baseDir.
// Collisions with an existing directory are retried; the prefix space is
// exhausted after maxPrefixTries attempts, reported as apperr.Resource.
func ReserveRunFolder(baseDir string, engine ports.Engine, modelString string) (string, error) {
	for attempt := 0; attempt < maxPrefixTries; attempt++ {
		prefix := drawPrefix(engine)
		name := prefix + "-" + modelString
		full := filepath.Join(baseDir, name)
		if err := os.Mkdir(full, 0o755); err == nil {
			return name, nil
		} else if !os.IsExist(err) {
			return "", apperr.Resource(fmt.Sprintf("creating output folder %s", full), err)
		}
	}
	return "", apperr.Resource("output folder prefix space exhausted", core.ErrResourceExhausted)
}

func drawPrefix(engine ports.Engine) string {
	v := engine.Uint32()
	b := make([]byte, 3)
	for i := range b {
		b[i] = letters[v%26]
		v /= 26
	}
	return string(b)
}
