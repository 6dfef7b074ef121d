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
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

// Importer imports all resources of a staged module regardless of the current VFS state.
type Importer struct {
	vfs         vfsStore
	scriptShell scriptShell
}

func NewImporter(vfs vfsStore, scriptShell scriptShell) *Importer {
	return &Importer{
		vfs:         vfs,
		scriptShell: scriptShell,
	}
}

// Import writes every staged entry and publishes the result. Single resource failures are
// reported and skipped. Staged content is removed in any case.
func (i *Importer) Import(ctx context.Context, data *models_import.ModuleImport, rep ReportSink) (err error) {
	mod := data.Module
	defer func() {
		if e := data.Cleanup(); e != nil {
			logger.Error("removing staged content failed", slog_attr.NameKey, mod.Name(), slog_attr.ErrorKey, e)
		}
		if err != nil {
			rep.Error(err)
		}
	}()
	rep.Headline(fmt.Sprintf("importing module %s %s", mod.Name(), mod.Version()))
	project, err := i.vfs.CreateProject(ctx, tempProjectName("import", mod.Name()))
	if err != nil {
		return fmt.Errorf("creating project failed: %w", err)
	}
	ctx = models_vfs.ContextWithProject(ctx, project.ID)
	imported := make(map[uuid.UUID]int)
	var processed []processedEntry
	for _, entry := range data.Entries {
		if err = ctx.Err(); err != nil {
			return err
		}
		res, err := importResource(ctx, i.vfs, entry, entry.Attributes)
		if err != nil {
			rep.Warn(entry.Path, err)
			continue
		}
		imported[res.StructureID] = res.TypeID
		if _, err = reconcileAccessControl(ctx, i.vfs, res.StructureID, entry.AccessControl); err != nil {
			rep.Warn(entry.Path, fmt.Errorf("writing access control entries failed: %w", err))
			continue
		}
		processed = append(processed, processedEntry{entry: entry, id: res.StructureID})
		rep.OK(entry.Path)
	}
	if err = parseLinks(ctx, i.vfs, imported); err != nil {
		rep.Warn("link parsing", err)
	}
	for _, p := range processed {
		if len(p.entry.Relations) == 0 {
			continue
		}
		if _, err := reconcileRelations(ctx, i.vfs, p.id, p.entry.Relations); err != nil {
			rep.Warn(p.entry.Path, fmt.Errorf("writing relations failed: %w", err))
		}
	}
	runImportScript(ctx, i.scriptShell, mod, rep)
	if mod.HasResourceTypes() {
		if err = i.vfs.ReinitializeTypes(ctx); err != nil {
			rep.Warn("resource types", err)
		}
	}
	if err = i.vfs.PublishProject(ctx, project.ID); err != nil {
		return fmt.Errorf("publishing project failed: %w", err)
	}
	rep.Headline(fmt.Sprintf("module %s imported", mod.Name()))
	return nil
}
