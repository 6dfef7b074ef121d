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
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	handler_updater "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/updater"
	helper_time "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/time"
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_import "github.com/SENERGY-Platform/cms-module-manager/pkg/models/import_data"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	models_storage "github.com/SENERGY-Platform/cms-module-manager/pkg/models/storage"
)

// Handler keeps the set of installed modules. Adding, deleting and replacing modules is
// mutually exclusive. Returned values are copies.
type Handler struct {
	storageHdl   storageHandler
	vfs          vfsStore
	reader       importReader
	gate         updateGate
	updater      moduleUpdater
	importer     moduleImporter
	hooks        map[string]ActionHook
	config       Config
	modules      map[string]models_storage.Module
	exportPoints []models_module.ExportPoint
	mu           sync.RWMutex
}

func New(storageHdl storageHandler, vfs vfsStore, reader importReader, gate updateGate, updater moduleUpdater, importer moduleImporter, hooks map[string]ActionHook, config Config) *Handler {
	return &Handler{
		storageHdl: storageHdl,
		vfs:        vfs,
		reader:     reader,
		gate:       gate,
		updater:    updater,
		importer:   importer,
		hooks:      hooks,
		config:     config,
		modules:    make(map[string]models_storage.Module),
	}
}

// Init loads the persisted modules and initializes their action hooks.
func (h *Handler) Init(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	stgMods, err := h.storageHdl.ListMod(ctx)
	if err != nil {
		return err
	}
	modules := make(map[string]models_storage.Module, len(stgMods))
	for _, stgMod := range stgMods {
		modules[stgMod.Name] = stgMod
	}
	h.modules = modules
	h.updateExportPoints()
	for _, stgMod := range h.sorted() {
		h.callHook(ctx, stgMod.Module, "initialize", ActionHook.Initialize)
	}
	logger.Info("modules loaded", slog_attr.CountKey, len(modules))
	return nil
}

// Shutdown calls the shutdown hook of every installed module.
func (h *Handler) Shutdown(ctx context.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, stgMod := range h.sorted() {
		h.callHook(ctx, stgMod.Module, "shutdown", ActionHook.Shutdown)
	}
}

// Modules returns all installed modules in installation order.
func (h *Handler) Modules() []models_module.Module {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.moduleList()
}

func (h *Handler) Module(name string) (models_module.Module, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	stgMod, ok := h.modules[name]
	if !ok {
		return models_module.Module{}, fmt.Errorf("module '%s': %w", name, models_error.NotFoundErr)
	}
	return stgMod.Module, nil
}

func (h *Handler) ModuleNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.modules))
}

func (h *Handler) ExportPoints() []models_module.ExportPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.exportPoints)
}

// DependencyMap returns the dependency map of the installed modules.
func (h *Handler) DependencyMap(forward bool) map[string][]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return BuildDependencyMap(h.moduleList(), forward)
}

// CheckDependencies returns the dependent modules of mod in DeleteMode and its unsatisfied
// dependencies in ImportMode.
func (h *Handler) CheckDependencies(mod models_module.Module, mode DependencyMode) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return checkDependencies(h.moduleMap(), mod, mode)
}

// CheckConflicts returns a ConflictError if mod registers resource or explorer types already
// registered by another installed module.
func (h *Handler) CheckConflicts(mod models_module.Module) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.checkConflicts(mod)
}

func (h *Handler) Add(ctx context.Context, mod models_module.Module) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.add(ctx, mod)
}

// ImportModule imports a package whose module is not installed.
func (h *Handler) ImportModule(ctx context.Context, pkgPath string, rep handler_updater.ReportSink) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	data, err := h.reader.ReadModuleData(ctx, pkgPath)
	if err != nil {
		return err
	}
	defer cleanup(data)
	if _, ok := h.modules[data.Module.Name()]; ok {
		return fmt.Errorf("module '%s': %w", data.Module.Name(), models_error.DuplicateErr)
	}
	if err = h.checkImport(data.Module); err != nil {
		return err
	}
	return h.importModule(ctx, data, rep)
}

// Delete removes a module and all of its resources.
func (h *Handler) Delete(ctx context.Context, name string, preserveLibs bool, rep handler_updater.ReportSink) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.delete(ctx, name, false, preserveLibs, rep)
}

// Replace installs the module contained in a package. An installed module is updated
// incrementally if possible, else it is deleted and imported again. Search indexing is paused
// for the duration of the operation.
func (h *Handler) Replace(ctx context.Context, pkgPath string, rep handler_updater.ReportSink) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.vfs.PauseIndexing(ctx); err != nil {
		return fmt.Errorf("pausing indexing failed: %w", err)
	}
	defer func() {
		if err := h.vfs.ResumeIndexing(context.WithoutCancel(ctx)); err != nil {
			logger.Error("resuming indexing failed", slog_attr.ErrorKey, err)
		}
	}()
	data, err := h.reader.ReadModuleData(ctx, pkgPath)
	if err != nil {
		return err
	}
	defer cleanup(data)
	name := data.Module.Name()
	stgMod, ok := h.modules[name]
	if !ok {
		if err = h.checkImport(data.Module); err != nil {
			return err
		}
		return h.importModule(ctx, data, rep)
	}
	installed := stgMod.Module
	updatable, err := h.gate.CheckUpdatable(ctx, &installed, data)
	if err != nil {
		return err
	}
	if updatable {
		rep.Print(fmt.Sprintf("updating module %s incrementally", name))
		if err = h.updater.Run(ctx, data, installed, h.commit, rep); err != nil {
			return err
		}
		h.callHook(ctx, h.modules[name].Module, "after publish", ActionHook.AfterPublish)
		return nil
	}
	rep.Print(fmt.Sprintf("replacing module %s", name))
	if err = h.checkImport(data.Module); err != nil {
		return err
	}
	if err = h.delete(ctx, name, true, h.config.PreserveLibs, rep); err != nil {
		return err
	}
	return h.importModule(ctx, data, rep)
}

// ScanPackages reads the module descriptors of all packages in dir.
func (h *Handler) ScanPackages(ctx context.Context, dir string) ([]models_module.Module, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var mods []models_module.Module
	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() && !isArchive(entry.Name()) {
			continue
		}
		mod, err := h.reader.ReadModule(ctx, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// ImportOrder returns the names of the modules contained in dir in installation order.
func (h *Handler) ImportOrder(ctx context.Context, dir string) ([]string, error) {
	mods, err := h.ScanPackages(ctx, dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, mod := range mods {
		names = append(names, mod.Name())
	}
	slices.Sort(names)
	return TopologicalSort(BuildDependencyMap(mods, false), names)
}

func (h *Handler) checkImport(mod models_module.Module) error {
	if missing := checkDependencies(h.moduleMap(), mod, ImportMode); len(missing) > 0 {
		return models_error.NewDependencyError(mod.Name(), "has unsatisfied dependencies", missing)
	}
	return h.checkConflicts(mod)
}

func (h *Handler) importModule(ctx context.Context, data *models_import.ModuleImport, rep handler_updater.ReportSink) error {
	if err := h.importer.Import(ctx, data, rep); err != nil {
		return err
	}
	mod, err := models_module.From(data.Module).
		SetInstalled(h.config.InstallUser, helper_time.Now()).
		SetCheckpointTime(helper_time.NowSeconds()).
		Build()
	if err != nil {
		return err
	}
	if err = h.add(ctx, mod); err != nil {
		return err
	}
	h.callHook(ctx, mod, "after publish", ActionHook.AfterPublish)
	return nil
}

func (h *Handler) add(ctx context.Context, mod models_module.Module) error {
	if _, ok := h.modules[mod.Name()]; ok {
		return fmt.Errorf("module '%s': %w", mod.Name(), models_error.DuplicateErr)
	}
	timestamp := helper_time.Now()
	stgMod := models_storage.Module{
		Name:     mod.Name(),
		Position: h.nextPosition(),
		Module:   mod,
		Added:    timestamp,
		Updated:  timestamp,
	}
	if err := h.storageHdl.CreateMod(ctx, stgMod); err != nil {
		return err
	}
	h.modules[mod.Name()] = stgMod
	h.updateExportPoints()
	h.callHook(ctx, mod, "update", ActionHook.Update)
	logger.Info("module added", slog_attr.NameKey, mod.Name(), slog_attr.VersionKey, mod.Version().String())
	return nil
}

// commit replaces the descriptor of an installed module. The caller must hold the lock.
func (h *Handler) commit(ctx context.Context, mod models_module.Module) error {
	stgMod, ok := h.modules[mod.Name()]
	if !ok {
		return fmt.Errorf("module '%s': %w", mod.Name(), models_error.NotFoundErr)
	}
	stgMod.Module = mod
	stgMod.Updated = helper_time.Now()
	if err := h.storageHdl.UpdateMod(ctx, stgMod); err != nil {
		return err
	}
	h.modules[mod.Name()] = stgMod
	h.updateExportPoints()
	h.callHook(ctx, mod, "update", ActionHook.Update)
	logger.Info("module updated", slog_attr.NameKey, mod.Name(), slog_attr.VersionKey, mod.Version().String())
	return nil
}

func (h *Handler) checkConflicts(mod models_module.Module) error {
	var conflicts []string
	for _, name := range slices.Sorted(maps.Keys(h.modules)) {
		if name == mod.Name() {
			continue
		}
		other := h.modules[name].Module
		for _, t := range mod.ResourceTypes() {
			for _, o := range other.ResourceTypes() {
				if t.ID == o.ID || t.Name == o.Name {
					conflicts = append(conflicts, fmt.Sprintf("resource type '%s' (%d) conflicts with '%s' (%d) of module '%s'", t.Name, t.ID, o.Name, o.ID, name))
				}
			}
		}
		for _, t := range mod.ExplorerTypes() {
			for _, o := range other.ExplorerTypes() {
				if t.Name == o.Name {
					conflicts = append(conflicts, fmt.Sprintf("explorer type '%s' conflicts with module '%s'", t.Name, name))
				}
			}
		}
	}
	if len(conflicts) > 0 {
		return models_error.NewConflictError(errors.New(strings.Join(conflicts, "; ")))
	}
	return nil
}

// updateExportPoints aggregates the export points of all modules in installation order. The
// first export point of a URI wins.
func (h *Handler) updateExportPoints() {
	seen := make(map[string]string)
	var exportPoints []models_module.ExportPoint
	for _, stgMod := range h.sorted() {
		for _, ep := range stgMod.Module.ExportPoints() {
			if owner, ok := seen[ep.URI]; ok {
				logger.Warn("duplicate export point dropped", slog_attr.URIKey, ep.URI, slog_attr.NameKey, stgMod.Name, slog_attr.OwnerKey, owner)
				continue
			}
			seen[ep.URI] = stgMod.Name
			exportPoints = append(exportPoints, ep)
		}
	}
	h.exportPoints = exportPoints
}

func (h *Handler) callHook(ctx context.Context, mod models_module.Module, action string, f func(ActionHook, context.Context, models_module.Module) error) {
	hook, ok := h.hooks[mod.ActionClass()]
	if !ok || mod.ActionClass() == "" {
		return
	}
	if err := f(hook, ctx, mod); err != nil {
		logger.Error("action hook failed", slog_attr.NameKey, mod.Name(), slog_attr.ActionKey, action, slog_attr.ErrorKey, err)
	}
}

func (h *Handler) sorted() []models_storage.Module {
	mods := slices.Collect(maps.Values(h.modules))
	slices.SortFunc(mods, func(a, b models_storage.Module) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.Name, b.Name)
	})
	return mods
}

func (h *Handler) moduleList() []models_module.Module {
	var mods []models_module.Module
	for _, stgMod := range h.sorted() {
		mods = append(mods, stgMod.Module)
	}
	return mods
}

func (h *Handler) moduleMap() map[string]models_module.Module {
	mods := make(map[string]models_module.Module, len(h.modules))
	for name, stgMod := range h.modules {
		mods[name] = stgMod.Module
	}
	return mods
}

func (h *Handler) nextPosition() int {
	pos := 0
	for _, stgMod := range h.modules {
		if stgMod.Position >= pos {
			pos = stgMod.Position + 1
		}
	}
	return pos
}

func isArchive(name string) bool {
	return strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}

func cleanup(data *models_import.ModuleImport) {
	if err := data.Cleanup(); err != nil {
		logger.Error("removing staged content failed", slog_attr.NameKey, data.Module.Name(), slog_attr.ErrorKey, err)
	}
}
