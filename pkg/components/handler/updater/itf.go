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
	"io"

	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

type vfsReader interface {
	ReadResource(ctx context.Context, view models_vfs.View, path string) (models_vfs.Resource, bool, error)
	ReadResourceByID(ctx context.Context, view models_vfs.View, id uuid.UUID) (models_vfs.Resource, bool, error)
}

type vfsStore interface {
	vfsReader
	ReadSubtree(ctx context.Context, path string) ([]models_vfs.Resource, error)
	ReadContent(ctx context.Context, id uuid.UUID) ([]byte, error)
	MoveResource(ctx context.Context, id uuid.UUID, dst string) error
	LockResource(ctx context.Context, id uuid.UUID, lockType models_vfs.LockType) error
	ImportResource(ctx context.Context, path string, attributes models_vfs.Resource, content io.Reader, properties []models_vfs.Property) (models_vfs.Resource, error)
	DeleteResource(ctx context.Context, id uuid.UUID, preserveSiblings bool) error
	ReadProperties(ctx context.Context, id uuid.UUID) ([]models_vfs.Property, error)
	WriteProperties(ctx context.Context, id uuid.UUID, properties []models_vfs.Property) error
	ReadAccessControlEntries(ctx context.Context, id uuid.UUID) ([]models_vfs.AccessControlEntry, error)
	GrantAccessControlEntry(ctx context.Context, id uuid.UUID, ace models_vfs.AccessControlEntry) error
	RevokeAccessControlEntry(ctx context.Context, id uuid.UUID, principalID uuid.UUID) error
	ReadRelations(ctx context.Context, id uuid.UUID) ([]models_vfs.Relation, error)
	AddRelation(ctx context.Context, id uuid.UUID, relation models_vfs.Relation) error
	DeleteRelations(ctx context.Context, id uuid.UUID, includeContentDefined bool) error
	ParseLinks(ctx context.Context, ids []uuid.UUID) error
	ResourceType(ctx context.Context, id int) (models_vfs.ResourceType, error)
	ReinitializeTypes(ctx context.Context) error
	CreateProject(ctx context.Context, name string) (models_vfs.Project, error)
	PublishProject(ctx context.Context, id uuid.UUID) error
}

type scriptShell interface {
	Execute(ctx context.Context, script string, env map[string]string) (string, error)
}

// ReportSink receives progress lines of imports and updates.
type ReportSink interface {
	Headline(msg string)
	Print(msg string)
	OK(path string)
	Skip(path string)
	Delete(path string)
	Warn(path string, err error)
	Error(err error)
}

// CommitFunc replaces the installed module descriptor with mod.
type CommitFunc func(ctx context.Context, mod models_module.Module) error
