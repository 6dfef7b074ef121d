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

package registry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	handler_updater "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/updater"
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

const libFolder = "lib"

// delete removes the resources and the descriptor of a module. Unless the module is replaced,
// deleting fails if other modules depend on it. All resources must be lockable, else a
// LockError naming every blocked resource is returned, the temporary project is discarded
// and nothing is deleted.
func (h *Handler) delete(ctx context.Context, name string, replace, preserveLibs bool, rep handler_updater.ReportSink) error {
	stgMod, ok := h.modules[name]
	if !ok {
		return fmt.Errorf("module '%s': %w", name, models_error.NotFoundErr)
	}
	mod := stgMod.Module
	if !replace {
		if dependents := checkDependencies(h.moduleMap(), mod, DeleteMode); len(dependents) > 0 {
			return models_error.NewDependencyError(name, "is required by", dependents)
		}
	}
	rep.Headline(fmt.Sprintf("deleting module %s %s", name, mod.Version()))
	project, err := h.vfs.CreateProject(ctx, "delete-"+name+"-"+uuid.NewString()[:8])
	if err != nil {
		return fmt.Errorf("creating project failed: %w", err)
	}
	ctx = models_vfs.ContextWithProject(ctx, project.ID)
	resources, err := h.moduleResources(ctx, mod, preserveLibs)
	if err != nil {
		h.discardProject(ctx, project.ID, nil)
		return fmt.Errorf("reading module resources failed: %w", err)
	}
	for _, p := range mod.Resources() {
		if err = h.vfs.CopyToProject(ctx, p); err != nil && !errors.Is(err, models_error.NotFoundErr) {
			h.discardProject(ctx, project.ID, resources)
			return fmt.Errorf("copying '%s' to project failed: %w", p, err)
		}
	}
	var locked []string
	for _, res := range resources {
		if err = h.vfs.LockResource(ctx, res.StructureID, models_vfs.Temporary); err != nil {
			if !errors.Is(err, models_error.LockedErr) {
				h.discardProject(ctx, project.ID, resources)
				return err
			}
			locked = append(locked, lockedPath(res))
		}
	}
	if len(locked) > 0 {
		h.discardProject(ctx, project.ID, resources)
		return models_error.NewLockError(locked)
	}
	if !replace {
		h.callHook(ctx, mod, "uninstall", ActionHook.Uninstall)
	}
	slices.SortStableFunc(resources, func(a, b models_vfs.Resource) int {
		da := strings.Count(strings.TrimSuffix(a.Path, "/"), "/")
		db := strings.Count(strings.TrimSuffix(b.Path, "/"), "/")
		if da != db {
			return db - da
		}
		return strings.Compare(a.Path, b.Path)
	})
	for _, res := range resources {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = h.vfs.DeleteResource(ctx, res.StructureID, true); err != nil && !errors.Is(err, models_error.NotFoundErr) {
			rep.Warn(res.Path, err)
			continue
		}
		rep.Delete(res.Path)
	}
	if !replace && mod.HasResourceTypes() {
		if err = h.vfs.ReinitializeTypes(ctx); err != nil {
			rep.Warn("resource types", err)
		}
	}
	if err = h.vfs.PublishProject(ctx, project.ID); err != nil {
		return fmt.Errorf("publishing project failed: %w", err)
	}
	if err = h.storageHdl.DeleteMod(ctx, name); err != nil && !errors.Is(err, models_error.NotFoundErr) {
		return err
	}
	delete(h.modules, name)
	h.updateExportPoints()
	logger.Info("module deleted", slog_attr.NameKey, name, slog_attr.CountKey, len(resources))
	rep.Headline(fmt.Sprintf("module %s deleted", name))
	return nil
}

// moduleResources expands the resource paths of mod. Excluded resources are omitted, as are
// library folders if preserveLibs is true.
func (h *Handler) moduleResources(ctx context.Context, mod models_module.Module, preserveLibs bool) ([]models_vfs.Resource, error) {
	seen := make(map[uuid.UUID]struct{})
	var resources []models_vfs.Resource
	for _, p := range mod.Resources() {
		subtree, err := h.vfs.ReadSubtree(ctx, p)
		if err != nil {
			return nil, err
		}
		libPath := path.Join(p, libFolder) + "/"
		for _, res := range subtree {
			if _, ok := seen[res.StructureID]; ok || !mod.IncludesPath(res.Path) {
				continue
			}
			if preserveLibs && strings.HasSuffix(p, "/") && strings.HasPrefix(res.Path, libPath) {
				continue
			}
			seen[res.StructureID] = struct{}{}
			resources = append(resources, res)
		}
	}
	return resources, nil
}

// discardProject releases the locks held on resources and removes the unpublished project.
// Locks held by other projects are left untouched.
func (h *Handler) discardProject(ctx context.Context, projectID uuid.UUID, resources []models_vfs.Resource) {
	ctx = context.WithoutCancel(ctx)
	for _, res := range resources {
		if err := h.vfs.UnlockResource(ctx, res.StructureID); err != nil && !errors.Is(err, models_error.LockedErr) && !errors.Is(err, models_error.NotFoundErr) {
			logger.Error("unlocking resource failed", slog_attr.PathKey, res.Path, slog_attr.ErrorKey, err)
		}
	}
	if err := h.vfs.DeleteProject(ctx, projectID); err != nil {
		logger.Error("discarding project failed", slog_attr.ProjectKey, projectID, slog_attr.ErrorKey, err)
	}
}

func lockedPath(res models_vfs.Resource) string {
	if res.Lock.Type == models_vfs.Inherited && res.Lock.Path != "" {
		return res.Path + " (" + res.Lock.Path + ")"
	}
	return res.Path
}
