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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	helper_time "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/time"
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_import "github.com/SENERGY-Platform/cms-module-manager/pkg/models/import_data"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

// Updater applies a staged module import to an installed module resource by resource.
type Updater struct {
	vfs         vfsStore
	scriptShell scriptShell
}

func New(vfs vfsStore, scriptShell scriptShell) *Updater {
	return &Updater{
		vfs:         vfs,
		scriptShell: scriptShell,
	}
}

type processedEntry struct {
	entry *models_import.ResourceEntry
	id    uuid.UUID
}

// Run updates the resources of installed to match data, removes resources no longer part of
// the module, commits the new descriptor and publishes all changes. A failure of a single
// resource is reported and does not stop the run. Staged content is removed in any case.
func (u *Updater) Run(ctx context.Context, data *models_import.ModuleImport, installed models_module.Module, commit CommitFunc, rep ReportSink) (err error) {
	defer func() {
		if e := data.Cleanup(); e != nil {
			logger.Error("removing staged content failed", slog_attr.NameKey, installed.Name(), slog_attr.ErrorKey, e)
		}
		if err != nil {
			rep.Error(err)
		}
	}()
	newMod := data.Module
	rep.Headline(fmt.Sprintf("updating module %s from %s to %s", installed.Name(), installed.Version(), newMod.Version()))
	project, err := u.vfs.CreateProject(ctx, tempProjectName("update", newMod.Name()))
	if err != nil {
		return fmt.Errorf("creating project failed: %w", err)
	}
	ctx = models_vfs.ContextWithProject(ctx, project.ID)
	keep := make(map[uuid.UUID]struct{})
	for _, entry := range data.Entries {
		keep[entry.Attributes.StructureID] = struct{}{}
	}
	for _, id := range data.Conflicts {
		keep[id] = struct{}{}
	}
	imported := make(map[uuid.UUID]int)
	var processed []processedEntry
	for _, entry := range data.Entries {
		if err = ctx.Err(); err != nil {
			return err
		}
		changed, id, err := u.updateResource(ctx, data, entry, imported)
		if err != nil {
			rep.Warn(entry.Path, err)
			continue
		}
		keep[id] = struct{}{}
		processed = append(processed, processedEntry{entry: entry, id: id})
		if changed {
			rep.OK(entry.Path)
		} else {
			rep.Skip(entry.Path)
		}
	}
	if err = u.deleteObsolete(ctx, installed, keep, rep); err != nil {
		return err
	}
	if err = parseLinks(ctx, u.vfs, imported); err != nil {
		rep.Warn("link parsing", err)
	}
	for _, p := range processed {
		if _, err := reconcileRelations(ctx, u.vfs, p.id, p.entry.Relations); err != nil {
			rep.Warn(p.entry.Path, fmt.Errorf("updating relations failed: %w", err))
		}
	}
	runImportScript(ctx, u.scriptShell, newMod, rep)
	checkpoint := helper_time.NowSeconds()
	if !checkpoint.After(installed.CheckpointTime()) {
		checkpoint = installed.CheckpointTime().Add(time.Second)
	}
	newMod, err = models_module.From(newMod).
		SetInstalled(installed.UserInstalled(), helper_time.Now()).
		SetCheckpointTime(checkpoint).
		Build()
	if err != nil {
		return err
	}
	if err = commit(ctx, newMod); err != nil {
		return fmt.Errorf("committing module failed: %w", err)
	}
	if typesChanged(installed, newMod) {
		if err = u.vfs.ReinitializeTypes(ctx); err != nil {
			rep.Warn("resource types", err)
		}
	}
	if err = u.vfs.PublishProject(ctx, project.ID); err != nil {
		return fmt.Errorf("publishing project failed: %w", err)
	}
	rep.Headline(fmt.Sprintf("module %s updated", newMod.Name()))
	return nil
}

func (u *Updater) updateResource(ctx context.Context, data *models_import.ModuleImport, entry *models_import.ResourceEntry, imported map[uuid.UUID]int) (bool, uuid.UUID, error) {
	existing, found, err := u.locate(ctx, data, entry)
	if err != nil {
		return false, uuid.Nil, err
	}
	var changed bool
	if found && existing.Path != entry.Path {
		if err = u.vfs.MoveResource(ctx, existing.StructureID, entry.Path); err != nil {
			return false, uuid.Nil, fmt.Errorf("moving from '%s' failed: %w", existing.Path, err)
		}
		existing.Path = entry.Path
		changed = true
	}
	needImport, err := u.needImport(ctx, existing, found, entry)
	if err != nil {
		return false, uuid.Nil, err
	}
	id := existing.StructureID
	if needImport {
		attributes := entry.Attributes
		if found {
			attributes.StructureID = existing.StructureID
		}
		res, err := importResource(ctx, u.vfs, entry, attributes)
		if err != nil {
			return false, uuid.Nil, err
		}
		id = res.StructureID
		imported[id] = res.TypeID
		changed = true
	} else if existing.Lock.IsUnlocked() {
		if err = u.vfs.LockResource(ctx, id, models_vfs.Temporary); err != nil {
			return false, uuid.Nil, fmt.Errorf("locking failed: %w", err)
		}
	}
	propsChanged, err := reconcileProperties(ctx, u.vfs, id, entry.Properties)
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("updating properties failed: %w", err)
	}
	aclChanged, err := reconcileAccessControl(ctx, u.vfs, id, entry.AccessControl)
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("updating access control entries failed: %w", err)
	}
	return changed || propsChanged || aclChanged, id, nil
}

func (u *Updater) locate(ctx context.Context, data *models_import.ModuleImport, entry *models_import.ResourceEntry) (models_vfs.Resource, bool, error) {
	if !entry.HasStructureID {
		return u.vfs.ReadResource(ctx, models_vfs.Offline, entry.Path)
	}
	res, found, err := u.vfs.ReadResourceByID(ctx, models_vfs.Offline, entry.Attributes.StructureID)
	if err != nil || found {
		return res, found, err
	}
	if id, ok := data.Conflict(entry.Attributes.StructureID); ok {
		return u.vfs.ReadResourceByID(ctx, models_vfs.Offline, id)
	}
	return models_vfs.Resource{}, false, nil
}

func (u *Updater) needImport(ctx context.Context, existing models_vfs.Resource, found bool, entry *models_import.ResourceEntry) (bool, error) {
	if !found || !entry.HasStructureID {
		return true, nil
	}
	if NeedToUpdateResourceFields(existing, entry, entry.Reduced()) {
		return true, nil
	}
	if entry.Attributes.Folder {
		return false, nil
	}
	current, err := u.vfs.ReadContent(ctx, existing.StructureID)
	if err != nil {
		return false, fmt.Errorf("reading content failed: %w", err)
	}
	staged, err := entry.ReadContent()
	if err != nil {
		return false, fmt.Errorf("reading staged content failed: %w", err)
	}
	return !bytes.Equal(current, staged), nil
}

// deleteObsolete removes every resource of the installed module that is not kept, deepest
// paths first.
func (u *Updater) deleteObsolete(ctx context.Context, installed models_module.Module, keep map[uuid.UUID]struct{}, rep ReportSink) error {
	obsolete, err := moduleTree(ctx, u.vfs, installed)
	if err != nil {
		return fmt.Errorf("reading module resources failed: %w", err)
	}
	obsolete = slices.DeleteFunc(obsolete, func(res models_vfs.Resource) bool {
		_, ok := keep[res.StructureID]
		return ok
	})
	sortDeepestFirst(obsolete)
	for _, res := range obsolete {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = deleteResource(ctx, u.vfs, res); err != nil {
			rep.Warn(res.Path, err)
			continue
		}
		rep.Delete(res.Path)
	}
	return nil
}

// moduleTree expands all resource paths of mod recursively, excluded resources are omitted.
func moduleTree(ctx context.Context, vfs vfsStore, mod models_module.Module) ([]models_vfs.Resource, error) {
	seen := make(map[uuid.UUID]struct{})
	var tree []models_vfs.Resource
	for _, p := range mod.Resources() {
		resources, err := vfs.ReadSubtree(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, res := range resources {
			if _, ok := seen[res.StructureID]; ok || !mod.IncludesPath(res.Path) {
				continue
			}
			seen[res.StructureID] = struct{}{}
			tree = append(tree, res)
		}
	}
	return tree, nil
}

func sortDeepestFirst(resources []models_vfs.Resource) {
	slices.SortStableFunc(resources, func(a, b models_vfs.Resource) int {
		da := strings.Count(strings.TrimSuffix(a.Path, "/"), "/")
		db := strings.Count(strings.TrimSuffix(b.Path, "/"), "/")
		if da != db {
			return db - da
		}
		return strings.Compare(a.Path, b.Path)
	})
}

func deleteResource(ctx context.Context, vfs vfsStore, res models_vfs.Resource) error {
	if err := vfs.LockResource(ctx, res.StructureID, models_vfs.Temporary); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if err := vfs.DeleteResource(ctx, res.StructureID, true); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func importResource(ctx context.Context, vfs vfsStore, entry *models_import.ResourceEntry, attributes models_vfs.Resource) (models_vfs.Resource, error) {
	var content io.Reader
	if entry.HasContent() {
		rc, err := entry.OpenContent()
		if err != nil {
			return models_vfs.Resource{}, err
		}
		defer rc.Close()
		content = rc
	}
	res, err := vfs.ImportResource(ctx, entry.Path, attributes, content, entry.Properties)
	if err != nil {
		return models_vfs.Resource{}, fmt.Errorf("importing failed: %w", err)
	}
	return res, nil
}

func parseLinks(ctx context.Context, vfs vfsStore, imported map[uuid.UUID]int) error {
	var ids []uuid.UUID
	parseable := make(map[int]bool)
	for id, typeID := range imported {
		ok, known := parseable[typeID]
		if !known {
			resType, err := vfs.ResourceType(ctx, typeID)
			if err != nil {
				return err
			}
			ok = resType.LinkParseable
			parseable[typeID] = ok
		}
		if ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return vfs.ParseLinks(ctx, ids)
}

func runImportScript(ctx context.Context, shell scriptShell, mod models_module.Module, rep ReportSink) {
	script := mod.ImportScript()
	if strings.TrimSpace(script) == "" {
		return
	}
	rep.Print("executing import script")
	output, err := shell.Execute(ctx, script, map[string]string{
		"MODULE_NAME":    mod.Name(),
		"MODULE_VERSION": mod.Version().String(),
	})
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line != "" {
			rep.Print(line)
		}
	}
	if err != nil {
		rep.Warn("import script", err)
	}
}

func typesChanged(a, b models_module.Module) bool {
	return !slices.Equal(a.ResourceTypes(), b.ResourceTypes()) || !slices.Equal(a.ExplorerTypes(), b.ExplorerTypes())
}

func tempProjectName(prefix, name string) string {
	return prefix + "-" + name + "-" + uuid.NewString()[:8]
}

func isNotFound(err error) bool {
	return errors.Is(err, models_error.NotFoundErr)
}
