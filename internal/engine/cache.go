package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/rotisserie/eris"

	"plantmap/internal/models"
)

// cacheSchema builds the parquet schema for the columns present in the source.
// Absent columns are left out so a reload reports the same gaps.
func cacheSchema(present []models.Column) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(present))
	for _, col := range present {
		var typ arrow.DataType = arrow.BinaryTypes.String
		if col.IsNumeric() {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields = append(fields, arrow.Field{Name: string(col), Type: typ, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

func presentColumns(missing []models.Column) []models.Column {
	absent := make(map[models.Column]bool, len(missing))
	for _, m := range missing {
		absent[m] = true
	}
	present := make([]models.Column, 0, len(models.AllColumns))
	for _, col := range models.AllColumns {
		if !absent[col] {
			present = append(present, col)
		}
	}
	return present
}

// WriteCache snapshots units to a parquet file at path. The file is written
// beside the destination and renamed into place.
func WriteCache(path string, units []models.PlantUnit, missing []models.Column) error {
	present := presentColumns(missing)
	schema := cacheSchema(present)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i, col := range present {
		switch fb := b.Field(i).(type) {
		case *array.Float64Builder:
			fb.Reserve(len(units))
			for j := range units {
				if v := units[j].Number(col); v != nil {
					fb.Append(*v)
				} else {
					fb.AppendNull()
				}
			}
		case *array.StringBuilder:
			fb.Reserve(len(units))
			for j := range units {
				fb.Append(units[j].Text(col))
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "cache: create temp file")
	}
	defer os.Remove(tmp.Name())

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(schema, tmp, props, pqarrow.DefaultWriterProps())
	if err != nil {
		tmp.Close()
		return eris.Wrap(err, "cache: new parquet writer")
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		tmp.Close()
		return eris.Wrap(err, "cache: write record")
	}
	if err := fw.Close(); err != nil {
		tmp.Close()
		return eris.Wrap(err, "cache: close parquet writer")
	}
	// The parquet writer may already have closed the sink.
	if err := tmp.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return eris.Wrap(err, "cache: close temp file")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrap(err, "cache: rename into place")
	}
	return nil
}

// ReadCache loads units from a parquet snapshot written by WriteCache.
// Contract columns missing from the file are reported, not failed.
func ReadCache(ctx context.Context, path string) ([]models.PlantUnit, []models.Column, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, nil, eris.Wrap(err, "cache: open parquet file")
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, nil, eris.Wrap(err, "cache: new arrow reader")
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "cache: read table")
	}
	defer tbl.Release()

	units := make([]models.PlantUnit, int(tbl.NumRows()))
	schema := tbl.Schema()

	var missing []models.Column
	for _, col := range models.AllColumns {
		idx := schema.FieldIndices(string(col))
		if len(idx) == 0 {
			missing = append(missing, col)
			continue
		}

		row := 0
		for _, chunk := range tbl.Column(idx[0]).Data().Chunks() {
			switch a := chunk.(type) {
			case *array.String:
				for i := 0; i < a.Len(); i++ {
					if !a.IsNull(i) {
						units[row].SetText(col, strings.Clone(a.Value(i)))
					}
					row++
				}
			case *array.Float64:
				for i := 0; i < a.Len(); i++ {
					if !a.IsNull(i) {
						v := a.Value(i)
						units[row].SetNumber(col, &v)
					}
					row++
				}
			default:
				return nil, nil, eris.Errorf("cache: column %q has unexpected type %s", col, chunk.DataType())
			}
		}
	}

	return units, missing, nil
}
