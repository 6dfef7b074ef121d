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
	"time"

	"github.com/google/uuid"
)

type View int

const (
	Offline View = iota
	Online
)

func (v View) String() string {
	if v == Online {
		return "online"
	}
	return "offline"
}

type LockType string

const (
	Unlocked  LockType = ""
	Exclusive LockType = "exclusive"
	Temporary LockType = "temporary"
	Inherited LockType = "inherited"
)

type Lock struct {
	Type      LockType  `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Path      string    `json:"path,omitempty"`
}

func (l Lock) IsUnlocked() bool {
	return l.Type == Unlocked
}

type Resource struct {
	StructureID      uuid.UUID `json:"structure_id"`
	ResourceID       uuid.UUID `json:"resource_id"`
	Path             string    `json:"path"`
	TypeID           int       `json:"type_id"`
	Flags            int       `json:"flags"`
	Folder           bool      `json:"folder"`
	Length           int64     `json:"length"`
	Siblings         int       `json:"siblings"`
	DateCreated      time.Time `json:"date_created"`
	UserCreated      uuid.UUID `json:"user_created"`
	DateLastModified time.Time `json:"date_last_modified"`
	UserLastModified uuid.UUID `json:"user_last_modified"`
	DateReleased     time.Time `json:"date_released"`
	DateExpired      time.Time `json:"date_expired"`
	Lock             Lock      `json:"lock"`
}

type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type AccessControlEntry struct {
	PrincipalID uuid.UUID `json:"principal_id"`
	Allowed     int       `json:"allowed"`
	Denied      int       `json:"denied"`
	Flags       int       `json:"flags"`
}

type Relation struct {
	TargetID         uuid.UUID `json:"target_id"`
	TargetPath       string    `json:"target_path"`
	Type             string    `json:"type"`
	DefinedInContent bool      `json:"defined_in_content"`
}

type Project struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ResourceType struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LinkParseable bool   `json:"link_parseable"`
}

type projectCtxKey struct{}

// ContextWithProject selects the project VFS operations issued with the returned context act on.
func ContextWithProject(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, projectCtxKey{}, id)
}

func ProjectFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(projectCtxKey{}).(uuid.UUID)
	return id, ok
}
