/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package import_data

import (
	"errors"
	"io"
	"os"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

// ResourceEntry is one manifest entry staged for import.
type ResourceEntry struct {
	Path          string
	Attributes    vfs.Resource
	Properties    []vfs.Property
	AccessControl []vfs.AccessControlEntry
	Relations     []vfs.Relation
	// HasStructureID and HasDateLastModified are false if the manifest omitted the values
	// and defaults were generated.
	HasStructureID      bool
	HasDateLastModified bool
	contentPath         string
}

func (e *ResourceEntry) SetContentPath(p string) {
	e.contentPath = p
}

func (e *ResourceEntry) HasContent() bool {
	return e.contentPath != ""
}

func (e *ResourceEntry) OpenContent() (io.ReadCloser, error) {
	if e.contentPath == "" {
		return nil, models_error.NotFoundErr
	}
	return os.Open(e.contentPath)
}

func (e *ResourceEntry) ReadContent() ([]byte, error) {
	if e.contentPath == "" {
		return nil, nil
	}
	return os.ReadFile(e.contentPath)
}

// Reduced reports whether the entry stems from an export lacking modification metadata.
func (e *ResourceEntry) Reduced() bool {
	return !e.HasDateLastModified
}

func (e *ResourceEntry) Cleanup() error {
	if e.contentPath == "" {
		return nil
	}
	err := os.Remove(e.contentPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	e.contentPath = ""
	return nil
}

// ModuleImport is a module descriptor together with its staged resource entries.
type ModuleImport struct {
	Module        module.Module
	ExportVersion string
	Entries       []*ResourceEntry
	// Conflicts maps a staged structure id to the id of the resource occupying the same path.
	Conflicts map[uuid.UUID]uuid.UUID
}

func New(mod module.Module, exportVersion string) *ModuleImport {
	return &ModuleImport{
		Module:        mod,
		ExportVersion: exportVersion,
		Conflicts:     make(map[uuid.UUID]uuid.UUID),
	}
}

func (d *ModuleImport) AddConflict(stagedID, existingID uuid.UUID) {
	if d.Conflicts == nil {
		d.Conflicts = make(map[uuid.UUID]uuid.UUID)
	}
	d.Conflicts[stagedID] = existingID
}

func (d *ModuleImport) Conflict(stagedID uuid.UUID) (uuid.UUID, bool) {
	id, ok := d.Conflicts[stagedID]
	return id, ok
}

// CountStructureID returns the number of entries carrying the given structure id.
func (d *ModuleImport) CountStructureID(id uuid.UUID) int {
	var n int
	for _, entry := range d.Entries {
		if entry.HasStructureID && entry.Attributes.StructureID == id {
			n++
		}
	}
	return n
}

// Cleanup removes all spooled content files, errors of single entries do not stop the removal
// of the remaining files.
func (d *ModuleImport) Cleanup() error {
	var errs []error
	for _, entry := range d.Entries {
		if err := entry.Cleanup(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return models_error.NewMultiError(errs)
	}
	return nil
}
