package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/locvowork/excel_exporter/pkg/excelexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFiles(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "xlsx")
	people := writeFile(t, in, "people.json", `[{"name":"Ann","age":31},{"name":"Bo","age":7}]`)
	empty := writeFile(t, in, "empty.json", `[]`)

	results, err := Files(context.Background(), []string{people, empty}, Options{OutDir: out, Workers: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(out, "people.xlsx"), results[0].Output)
	assert.Equal(t, 2, results[0].Rows)
	assert.Equal(t, 0, results[1].Rows)

	f, err := excelize.OpenFile(results[0].Output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("people")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "age"}, {"Ann", "31"}, {"Bo", "7"}}, rows)

	g, err := excelize.OpenFile(results[1].Output)
	require.NoError(t, err)
	defer g.Close()
	v, _ := g.GetCellValue(excelexport.PlaceholderWorksheet, "A1")
	assert.Equal(t, excelexport.PlaceholderText, v)
}

func TestFilesWorksheetOverride(t *testing.T) {
	in := t.TempDir()
	path := writeFile(t, in, "a.json", `[{"k":"v"}]`)

	results, err := Files(context.Background(), []string{path}, Options{OutDir: in, Worksheet: "Data"})
	require.NoError(t, err)

	f, err := excelize.OpenFile(results[0].Output)
	require.NoError(t, err)
	defer f.Close()
	v, _ := f.GetCellValue("Data", "A2")
	assert.Equal(t, "v", v)
}

func TestFilesErrors(t *testing.T) {
	in := t.TempDir()
	bad := writeFile(t, in, "bad.json", `{"k":"v"}`)

	_, err := Files(context.Background(), []string{bad}, Options{OutDir: in})
	assert.ErrorContains(t, err, "bad.json")

	_, err = Files(context.Background(), []string{filepath.Join(in, "missing.json")}, Options{OutDir: in})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilesRetriesFailedFile(t *testing.T) {
	in := t.TempDir()
	path := filepath.Join(in, "late.json")

	// The input appears while the first attempt's retry wait is running.
	go func() {
		time.Sleep(retryWait / 5)
		_ = os.WriteFile(path+".tmp", []byte(`[{"k":"v"}]`), 0o644)
		_ = os.Rename(path+".tmp", path)
	}()

	results, err := Files(context.Background(), []string{path}, Options{OutDir: in, Retries: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Rows)
}
