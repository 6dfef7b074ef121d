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

	handler_updater "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/updater"
	models_import "github.com/SENERGY-Platform/cms-module-manager/pkg/models/import_data"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	models_storage "github.com/SENERGY-Platform/cms-module-manager/pkg/models/storage"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

type storageHandler interface {
	ListMod(ctx context.Context) ([]models_storage.Module, error)
	CreateMod(ctx context.Context, mod models_storage.Module) error
	UpdateMod(ctx context.Context, mod models_storage.Module) error
	DeleteMod(ctx context.Context, name string) error
}

type vfsStore interface {
	ReadSubtree(ctx context.Context, path string) ([]models_vfs.Resource, error)
	LockResource(ctx context.Context, id uuid.UUID, lockType models_vfs.LockType) error
	UnlockResource(ctx context.Context, id uuid.UUID) error
	DeleteResource(ctx context.Context, id uuid.UUID, preserveSiblings bool) error
	ReinitializeTypes(ctx context.Context) error
	CreateProject(ctx context.Context, name string) (models_vfs.Project, error)
	CopyToProject(ctx context.Context, path string) error
	PublishProject(ctx context.Context, id uuid.UUID) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	PauseIndexing(ctx context.Context) error
	ResumeIndexing(ctx context.Context) error
}

type importReader interface {
	ReadModule(ctx context.Context, pkgPath string) (models_module.Module, error)
	ReadModuleData(ctx context.Context, pkgPath string) (*models_import.ModuleImport, error)
}

type updateGate interface {
	CheckUpdatable(ctx context.Context, installed *models_module.Module, data *models_import.ModuleImport) (bool, error)
}

type moduleUpdater interface {
	Run(ctx context.Context, data *models_import.ModuleImport, installed models_module.Module, commit handler_updater.CommitFunc, rep handler_updater.ReportSink) error
}

type moduleImporter interface {
	Import(ctx context.Context, data *models_import.ModuleImport, rep handler_updater.ReportSink) error
}

// ActionHook is implemented by modules that need to take part in their own lifecycle.
// Failures are logged and do not abort the registry operation.
type ActionHook interface {
	Initialize(ctx context.Context, mod models_module.Module) error
	Uninstall(ctx context.Context, mod models_module.Module) error
	Update(ctx context.Context, mod models_module.Module) error
	AfterPublish(ctx context.Context, mod models_module.Module) error
	Shutdown(ctx context.Context, mod models_module.Module) error
}
