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
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/stitch/pkg/stitch"
)

// ErrInvalidCardinality rejects a cardinality rate outside (0, 1]. Callers
// treat it as fatal for the whole run.
var ErrInvalidCardinality = errors.New("cardinality rate must be in (0, 1]")

// Generate produces columns of independent uniform draws from
// [0, floor(rows*cardinalityRate)]. Each column derives its own rng from
// seed, so the data set is reproducible and the columns can be filled
// concurrently.
func Generate(rows, columns int, cardinalityRate float64, seed int64) ([]stitch.RawColumn, error) {
	if cardinalityRate <= 0 || cardinalityRate > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCardinality, cardinalityRate)
	}
	if rows < 1 {
		return nil, fmt.Errorf("invalid row count %d", rows)
	}
	if columns < 1 {
		return nil, fmt.Errorf("invalid column count %d", columns)
	}

	maxValue := uint32(float64(rows) * cardinalityRate)
	cols := make([]stitch.RawColumn, columns)

	g := errgroup.Group{}
	for c := 0; c < columns; c++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(c)))
			data := make(stitch.RawColumn, rows)
			for r := 0; r < rows; r++ {
				data[r] = rng.Uint32() % (maxValue + 1)
			}
			cols[c] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cols, nil
}
