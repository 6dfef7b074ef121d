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

package updater

import (
	"context"
	"fmt"

	models_import "github.com/SENERGY-Platform/cms-module-manager/pkg/models/import_data"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

var views = []models_vfs.View{models_vfs.Offline, models_vfs.Online}

// Gate decides whether an installed module can be updated incrementally.
type Gate struct {
	vfs           vfsReader
	exportVersion string
}

func NewGate(vfs vfsReader, exportVersion string) *Gate {
	return &Gate{
		vfs:           vfs,
		exportVersion: exportVersion,
	}
}

// CheckUpdatable returns false if installed can not be updated with data. Data mismatches are
// logged and never returned as errors. Tolerable structure id conflicts are recorded in data.
func (g *Gate) CheckUpdatable(ctx context.Context, installed *models_module.Module, data *models_import.ModuleImport) (bool, error) {
	if installed == nil {
		logNotUpdatable(data.Module.Name(), "module not installed")
		return false, nil
	}
	name := installed.Name()
	if !(installed.OnlySystemResources() && data.Module.OnlySystemResources()) && installed.Site() != data.Module.Site() {
		logNotUpdatable(name, fmt.Sprintf("site mismatch '%s' != '%s'", installed.Site(), data.Module.Site()))
		return false, nil
	}
	if data.ExportVersion != g.exportVersion {
		logNotUpdatable(name, fmt.Sprintf("unsupported export version '%s'", data.ExportVersion))
		return false, nil
	}
	data.Conflicts = make(map[uuid.UUID]uuid.UUID)
	for _, entry := range data.Entries {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if !entry.HasStructureID {
			if data.Module.IncludesPath(entry.Path) {
				logNotUpdatable(name, fmt.Sprintf("'%s' has no structure id", entry.Path))
				return false, nil
			}
			continue
		}
		if !entry.Attributes.Folder && !entry.HasContent() {
			logNotUpdatable(name, fmt.Sprintf("'%s' is a sibling", entry.Path))
			return false, nil
		}
		ok, reason, err := g.checkEntry(ctx, data, entry)
		if err != nil {
			return false, err
		}
		if !ok {
			logNotUpdatable(name, reason)
			return false, nil
		}
	}
	return true, nil
}

func (g *Gate) checkEntry(ctx context.Context, data *models_import.ModuleImport, entry *models_import.ResourceEntry) (bool, string, error) {
	stagedID := entry.Attributes.StructureID
	for _, view := range views {
		res, found, err := g.vfs.ReadResource(ctx, view, entry.Path)
		if err != nil {
			return false, "", err
		}
		if found && res.StructureID != stagedID {
			ok, err := g.isTolerable(ctx, data, entry, res)
			if err != nil {
				return false, "", err
			}
			if !ok {
				return false, fmt.Sprintf("'%s' has conflicting structure id %s in %s view", entry.Path, res.StructureID, view), nil
			}
			data.AddConflict(stagedID, res.StructureID)
		}
		res, found, err = g.vfs.ReadResourceByID(ctx, view, stagedID)
		if err != nil {
			return false, "", err
		}
		if found && res.Folder != entry.Attributes.Folder {
			return false, fmt.Sprintf("'%s' changed between file and folder", entry.Path), nil
		}
	}
	return true, "", nil
}

// isTolerable reports whether the staged entry may overwrite existing although both carry
// different structure ids. This requires both ids to be unambiguous.
func (g *Gate) isTolerable(ctx context.Context, data *models_import.ModuleImport, entry *models_import.ResourceEntry, existing models_vfs.Resource) (bool, error) {
	stagedID := entry.Attributes.StructureID
	if id, ok := data.Conflict(stagedID); ok && id != existing.StructureID {
		return false, nil
	}
	if data.CountStructureID(stagedID) != 1 || data.CountStructureID(existing.StructureID) != 0 {
		return false, nil
	}
	if existing.Siblings > 1 {
		return false, nil
	}
	for _, view := range views {
		_, found, err := g.vfs.ReadResourceByID(ctx, view, stagedID)
		if err != nil {
			return false, err
		}
		if found {
			return false, nil
		}
	}
	return true, nil
}

func logNotUpdatable(name, reason string) {
	logger.Info("module not updatable", slog_attr.NameKey, name, slog_attr.ReasonKey, reason)
}
