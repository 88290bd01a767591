package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"plantmap/internal/config"
	"plantmap/internal/models"
)

// ErrDataNotFound is returned when the source workbook does not exist.
var ErrDataNotFound = eris.New("data file not found")

// Loader reads the plant tracker workbook through a parquet cache and
// memoizes the result per (source mtime, cache mtime).
type Loader struct {
	SourcePath string
	Sheet      string
	CachePath  string

	memo *Memo[*ColumnStore]
}

// NewLoader creates a Loader for the configured workbook.
func NewLoader(cfg config.DataConfig) *Loader {
	return &Loader{
		SourcePath: cfg.Path,
		Sheet:      cfg.Sheet,
		CachePath:  cfg.CachePath,
		memo:       NewMemo[*ColumnStore](),
	}
}

// Load stats the source and cache files and returns the dataset.
func (l *Loader) Load(ctx context.Context) (*ColumnStore, error) {
	return l.LoadAt(ctx, modTime(l.SourcePath), modTime(l.CachePath))
}

// LoadAt returns the dataset for the given freshness markers. A repeated
// call with the same markers returns the memoized store without touching
// either file.
func (l *Loader) LoadAt(ctx context.Context, sourceMod, cacheMod time.Time) (*ColumnStore, error) {
	version := stamp(sourceMod) + "/" + stamp(cacheMod)
	return l.memo.Get(l.SourcePath, version, func() (*ColumnStore, error) {
		return l.load(ctx, sourceMod, cacheMod)
	})
}

func (l *Loader) load(ctx context.Context, sourceMod, cacheMod time.Time) (*ColumnStore, error) {
	if _, err := os.Stat(l.SourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrDataNotFound, "%s", filepath.Base(l.SourcePath))
		}
		return nil, eris.Wrap(err, "loader: stat source")
	}

	start := time.Now()
	var (
		units     []models.PlantUnit
		missing   []models.Column
		fromCache bool
	)

	if l.CachePath != "" && !cacheMod.IsZero() && !cacheMod.Before(sourceMod) {
		var err error
		units, missing, err = ReadCache(ctx, l.CachePath)
		if err != nil {
			zap.L().Warn("loader: cache unreadable, parsing source",
				zap.String("cache", l.CachePath),
				zap.Error(err),
			)
		} else {
			fromCache = true
		}
	}

	if !fromCache {
		var err error
		units, missing, err = ParseWorkbook(l.SourcePath, l.Sheet)
		if err != nil {
			return nil, err
		}
		if l.CachePath != "" {
			if err := WriteCache(l.CachePath, units, missing); err != nil {
				zap.L().Debug("loader: cache write skipped", zap.Error(err))
			}
		}
	}

	Normalize(units)

	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = string(m)
		}
		zap.L().Warn("loader: source is missing columns", zap.Strings("columns", names))
	}
	zap.L().Info("loader: dataset loaded",
		zap.Bool("from_cache", fromCache),
		zap.Int("units", len(units)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return NewColumnStore(units, missing), nil
}

// ParseWorkbook reads one unit per row from the named sheet. Columns are
// located by header text; absent contract columns are returned as missing.
func ParseWorkbook(path, sheet string) ([]models.PlantUnit, []models.Column, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: open file")
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "xlsx: read sheet %q", sheet)
	}

	header := map[string]int{}
	if len(rows) > 0 {
		for i, h := range rows[0] {
			name := strings.TrimSpace(h)
			if _, dup := header[name]; !dup {
				header[name] = i
			}
		}
	}

	var missing []models.Column
	index := make(map[models.Column]int, len(models.AllColumns))
	for _, col := range models.AllColumns {
		if i, ok := header[string(col)]; ok {
			index[col] = i
		} else {
			missing = append(missing, col)
		}
	}

	var units []models.PlantUnit
	if len(rows) > 1 {
		units = make([]models.PlantUnit, 0, len(rows)-1)
	}
	for _, row := range rows[min(1, len(rows)):] {
		if blankRow(row) {
			continue
		}
		var u models.PlantUnit
		for col, i := range index {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if col.IsNumeric() {
				u.SetNumber(col, ParseNumber(cell))
			} else {
				u.SetText(col, cell)
			}
		}
		units = append(units, u)
	}

	return units, missing, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// modTime returns the file's modification time, zero when absent.
func modTime(path string) time.Time {
	if path == "" {
		return time.Time{}
	}
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixNano(), 10)
}
