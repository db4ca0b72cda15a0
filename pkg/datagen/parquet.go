// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datagen

import (
	"fmt"

	pqLocal "github.com/xitongsys/parquet-go-source/local"
	pqReader "github.com/xitongsys/parquet-go/reader"
	pqWriter "github.com/xitongsys/parquet-go/writer"

	"github.com/daviszhen/stitch/pkg/stitch"
	"github.com/daviszhen/stitch/pkg/util"
)

// WriteParquet materializes the columns to one parquet file with a UINT_32
// field per raw column, so generated data sets can be reused across runs.
func WriteParquet(path string, cols []stitch.RawColumn) error {
	if util.Empty(cols) {
		return fmt.Errorf("no columns to write")
	}
	rows := len(cols[0])
	for _, col := range cols {
		if len(col) != rows {
			return fmt.Errorf("data size mismatch: %d vs %d", len(col), rows)
		}
	}

	md := make([]string, len(cols))
	for c := range cols {
		md[c] = fmt.Sprintf("name=c%d, type=INT32, convertedtype=UINT_32", c)
	}

	fw, err := pqLocal.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fw.Close()

	pw, err := pqWriter.NewCSVWriter(md, fw, 1)
	if err != nil {
		return err
	}
	for r := 0; r < rows; r++ {
		// the writer buffers each record by reference until it flushes, so
		// every row needs its own slice
		rec := make([]interface{}, len(cols))
		for c := range cols {
			rec[c] = int32(cols[c][r])
		}
		if err = pw.Write(rec); err != nil {
			return err
		}
	}
	return pw.WriteStop()
}

// ReadParquet loads every column of a file written by WriteParquet.
func ReadParquet(path string) ([]stitch.RawColumn, error) {
	fr, err := pqLocal.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	pr, err := pqReader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	numCols := len(pr.SchemaHandler.ValueColumns)
	numRows := pr.GetNumRows()
	cols := make([]stitch.RawColumn, numCols)
	for c := 0; c < numCols; c++ {
		values, _, _, err := pr.ReadColumnByIndex(int64(c), numRows)
		if err != nil {
			return nil, err
		}
		data := make(stitch.RawColumn, 0, len(values))
		for _, v := range values {
			iv, ok := v.(int32)
			if !ok {
				return nil, fmt.Errorf("column %d holds %T, want int32", c, v)
			}
			data = append(data, uint32(iv))
		}
		cols[c] = data
	}
	return cols, nil
}
