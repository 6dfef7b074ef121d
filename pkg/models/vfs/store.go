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

package vfs

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Store is the resource store modules are installed into. Write operations act on the
// project carried by the context.
type Store interface {
	ReadResource(ctx context.Context, view View, path string) (Resource, bool, error)
	ReadResourceByID(ctx context.Context, view View, id uuid.UUID) (Resource, bool, error)
	ReadSubtree(ctx context.Context, path string) ([]Resource, error)
	ReadContent(ctx context.Context, id uuid.UUID) ([]byte, error)
	MoveResource(ctx context.Context, id uuid.UUID, dst string) error
	LockResource(ctx context.Context, id uuid.UUID, lockType LockType) error
	UnlockResource(ctx context.Context, id uuid.UUID) error
	ImportResource(ctx context.Context, path string, attributes Resource, content io.Reader, properties []Property) (Resource, error)
	DeleteResource(ctx context.Context, id uuid.UUID, preserveSiblings bool) error
	ReadProperties(ctx context.Context, id uuid.UUID) ([]Property, error)
	WriteProperties(ctx context.Context, id uuid.UUID, properties []Property) error
	ReadAccessControlEntries(ctx context.Context, id uuid.UUID) ([]AccessControlEntry, error)
	GrantAccessControlEntry(ctx context.Context, id uuid.UUID, ace AccessControlEntry) error
	RevokeAccessControlEntry(ctx context.Context, id uuid.UUID, principalID uuid.UUID) error
	ReadRelations(ctx context.Context, id uuid.UUID) ([]Relation, error)
	AddRelation(ctx context.Context, id uuid.UUID, relation Relation) error
	DeleteRelations(ctx context.Context, id uuid.UUID, includeContentDefined bool) error
	ParseLinks(ctx context.Context, ids []uuid.UUID) error
	ResourceType(ctx context.Context, id int) (ResourceType, error)
	ReinitializeTypes(ctx context.Context) error
	CreateProject(ctx context.Context, name string) (Project, error)
	CopyToProject(ctx context.Context, path string) error
	PublishProject(ctx context.Context, id uuid.UUID) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	PauseIndexing(ctx context.Context) error
	ResumeIndexing(ctx context.Context) error
}
