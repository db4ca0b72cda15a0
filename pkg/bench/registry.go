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

package bench

import (
	"fmt"
	"strings"

	treemap "github.com/liyue201/gostl/ds/map"
	"github.com/tidwall/btree"

	"github.com/daviszhen/stitch/pkg/stitch"
	"github.com/daviszhen/stitch/pkg/util"
)

// DataSet is a named group of raw columns sharing one row count.
type DataSet struct {
	Name    string
	Columns []stitch.RawColumn
}

// DataSetRegistry keeps datasets ordered by name. Dataset builders may run
// concurrently and register as they finish, so access is guarded.
type DataSetRegistry struct {
	lock *util.ReentryLock
	sets *treemap.Map[string, *DataSet]
}

func NewDataSetRegistry() *DataSetRegistry {
	return &DataSetRegistry{
		lock: util.NewReentryLock(),
		sets: treemap.New[string, *DataSet](strings.Compare),
	}
}

func (reg *DataSetRegistry) Register(set *DataSet) error {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	if set == nil || set.Name == "" {
		return fmt.Errorf("dataset needs a name")
	}
	if _, err := reg.sets.Get(set.Name); err == nil {
		return fmt.Errorf("duplicate dataset %s", set.Name)
	}
	reg.sets.Insert(set.Name, set)
	return nil
}

func (reg *DataSetRegistry) Get(name string) (*DataSet, bool) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	set, err := reg.sets.Get(name)
	if err != nil {
		return nil, false
	}
	return set, true
}

func (reg *DataSetRegistry) Size() int {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	return reg.sets.Size()
}

// Traversal visits datasets in name order.
func (reg *DataSetRegistry) Traversal(visit func(set *DataSet) bool) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	reg.sets.Traversal(func(key string, value *DataSet) bool {
		return visit(value)
	})
}

// PlanEntry is a named plan in the plan registry.
type PlanEntry struct {
	Name string
	Plan StitchPlan
}

func planEntryLess(a, b *PlanEntry) bool {
	return a.Name < b.Name
}

// PlanRegistry keeps named plans ordered by name so runs iterate them in a
// stable order. Registered plans are copied.
type PlanRegistry struct {
	lock *util.ReentryLock
	tree *btree.BTreeG[*PlanEntry]
}

func NewPlanRegistry() *PlanRegistry {
	return &PlanRegistry{
		lock: util.NewReentryLock(),
		tree: btree.NewBTreeG[*PlanEntry](planEntryLess),
	}
}

func (reg *PlanRegistry) Register(name string, plan StitchPlan) error {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	if name == "" {
		return fmt.Errorf("plan needs a name")
	}
	if _, has := reg.tree.Get(&PlanEntry{Name: name}); has {
		return fmt.Errorf("duplicate plan %s", name)
	}
	reg.tree.Set(&PlanEntry{Name: name, Plan: plan.Copy()})
	return nil
}

func (reg *PlanRegistry) Get(name string) (StitchPlan, bool) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	entry, has := reg.tree.Get(&PlanEntry{Name: name})
	if !has {
		return nil, false
	}
	return entry.Plan, true
}

func (reg *PlanRegistry) Size() int {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	return reg.tree.Len()
}

// Scan visits plans in name order.
func (reg *PlanRegistry) Scan(visit func(entry *PlanEntry) bool) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	reg.tree.Scan(visit)
}
