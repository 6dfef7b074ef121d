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

package vfs_memory

import (
	"context"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	helper_time "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/time"
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

type resource struct {
	attributes models_vfs.Resource
	content    []byte
	properties map[string]string
	acl        map[uuid.UUID]models_vfs.AccessControlEntry
	relations  []models_vfs.Relation
}

func (r *resource) clone() *resource {
	return &resource{
		attributes: r.attributes,
		content:    slices.Clone(r.content),
		properties: maps.Clone(r.properties),
		acl:        maps.Clone(r.acl),
		relations:  slices.Clone(r.relations),
	}
}

var _ models_vfs.Store = (*Handler)(nil)

// Handler is a VFS resource store kept in memory. Publishing a project copies the offline view
// to the online view and releases the locks held by the project.
type Handler struct {
	offline  map[uuid.UUID]*resource
	online   map[uuid.UUID]*resource
	projects map[uuid.UUID]models_vfs.Project
	types    map[int]models_vfs.ResourceType
	paused   bool
	mu       sync.RWMutex
}

func New() *Handler {
	return &Handler{
		offline:  make(map[uuid.UUID]*resource),
		online:   make(map[uuid.UUID]*resource),
		projects: make(map[uuid.UUID]models_vfs.Project),
		types:    make(map[int]models_vfs.ResourceType),
	}
}

// SetResourceType registers a resource type.
func (h *Handler) SetResourceType(t models_vfs.ResourceType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.types[t.ID] = t
}

func (h *Handler) ReadResource(_ context.Context, view models_vfs.View, path string) (models_vfs.Resource, bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res, ok := h.byPath(h.view(view), path)
	if !ok {
		return models_vfs.Resource{}, false, nil
	}
	return res.attributes, true, nil
}

func (h *Handler) ReadResourceByID(_ context.Context, view models_vfs.View, id uuid.UUID) (models_vfs.Resource, bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res, ok := h.view(view)[id]
	if !ok {
		return models_vfs.Resource{}, false, nil
	}
	return res.attributes, true, nil
}

func (h *Handler) ReadSubtree(_ context.Context, path string) ([]models_vfs.Resource, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	folder := strings.TrimSuffix(path, "/")
	var resources []models_vfs.Resource
	for _, res := range h.offline {
		p := res.attributes.Path
		if strings.TrimSuffix(p, "/") == folder || strings.HasPrefix(p, folder+"/") {
			resources = append(resources, res.attributes)
		}
	}
	slices.SortFunc(resources, func(a, b models_vfs.Resource) int {
		return strings.Compare(a.Path, b.Path)
	})
	return resources, nil
}

func (h *Handler) ReadContent(_ context.Context, id uuid.UUID) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res, err := h.get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(res.content), nil
}

func (h *Handler) MoveResource(ctx context.Context, id uuid.UUID, dst string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	if other, ok := h.byPath(h.offline, dst); ok && other != res {
		return models_error.DuplicateErr
	}
	if err = h.lock(ctx, res, models_vfs.Temporary); err != nil {
		return err
	}
	res.attributes.Path = dst
	return nil
}

func (h *Handler) LockResource(ctx context.Context, id uuid.UUID, lockType models_vfs.LockType) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	return h.lock(ctx, res, lockType)
}

// UnlockResource removes the lock of a resource. Locks held by another project can not be removed.
func (h *Handler) UnlockResource(ctx context.Context, id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	projectID, _ := models_vfs.ProjectFromContext(ctx)
	if current := res.attributes.Lock; !current.IsUnlocked() && current.ProjectID != projectID {
		return models_error.LockedErr
	}
	res.attributes.Lock = models_vfs.Lock{}
	return nil
}

func (h *Handler) ImportResource(ctx context.Context, path string, attributes models_vfs.Resource, content io.Reader, properties []models_vfs.Property) (models_vfs.Resource, error) {
	var b []byte
	if content != nil {
		var err error
		if b, err = io.ReadAll(content); err != nil {
			return models_vfs.Resource{}, err
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if attributes.StructureID == uuid.Nil {
		attributes.StructureID = uuid.New()
	}
	if attributes.ResourceID == uuid.Nil {
		attributes.ResourceID = uuid.New()
	}
	res, ok := h.offline[attributes.StructureID]
	if other, found := h.byPath(h.offline, path); found && other != res {
		if err := h.lock(ctx, other, models_vfs.Temporary); err != nil {
			return models_vfs.Resource{}, err
		}
		delete(h.offline, other.attributes.StructureID)
	}
	if !ok {
		res = &resource{
			properties: make(map[string]string),
			acl:        make(map[uuid.UUID]models_vfs.AccessControlEntry),
		}
		h.offline[attributes.StructureID] = res
	} else if err := h.lock(ctx, res, models_vfs.Temporary); err != nil {
		return models_vfs.Resource{}, err
	}
	lock := res.attributes.Lock
	attributes.Path = path
	attributes.Length = int64(len(b))
	attributes.Siblings = 1
	if attributes.DateLastModified.IsZero() {
		attributes.DateLastModified = helper_time.Now()
	}
	attributes.Lock = lock
	if !ok {
		attributes.Lock = newLock(ctx, models_vfs.Temporary)
	}
	res.attributes = attributes
	res.content = b
	for _, p := range properties {
		res.properties[p.Name] = p.Value
	}
	return res.attributes, nil
}

func (h *Handler) DeleteResource(_ context.Context, id uuid.UUID, _ bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.get(id); err != nil {
		return err
	}
	delete(h.offline, id)
	return nil
}

func (h *Handler) ReadProperties(_ context.Context, id uuid.UUID) ([]models_vfs.Property, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res, err := h.get(id)
	if err != nil {
		return nil, err
	}
	var properties []models_vfs.Property
	for _, k := range slices.Sorted(maps.Keys(res.properties)) {
		properties = append(properties, models_vfs.Property{Name: k, Value: res.properties[k]})
	}
	return properties, nil
}

func (h *Handler) WriteProperties(_ context.Context, id uuid.UUID, properties []models_vfs.Property) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	for _, p := range properties {
		res.properties[p.Name] = p.Value
	}
	return nil
}

func (h *Handler) ReadAccessControlEntries(_ context.Context, id uuid.UUID) ([]models_vfs.AccessControlEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res, err := h.get(id)
	if err != nil {
		return nil, err
	}
	entries := slices.Collect(maps.Values(res.acl))
	slices.SortFunc(entries, func(a, b models_vfs.AccessControlEntry) int {
		return strings.Compare(a.PrincipalID.String(), b.PrincipalID.String())
	})
	return entries, nil
}

func (h *Handler) GrantAccessControlEntry(_ context.Context, id uuid.UUID, ace models_vfs.AccessControlEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	res.acl[ace.PrincipalID] = ace
	return nil
}

func (h *Handler) RevokeAccessControlEntry(_ context.Context, id uuid.UUID, principalID uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	delete(res.acl, principalID)
	return nil
}

func (h *Handler) ReadRelations(_ context.Context, id uuid.UUID) ([]models_vfs.Relation, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res, err := h.get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(res.relations), nil
}

func (h *Handler) AddRelation(_ context.Context, id uuid.UUID, relation models_vfs.Relation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	if target, ok := h.byPath(h.offline, relation.TargetPath); ok {
		relation.TargetID = target.attributes.StructureID
	}
	res.relations = append(res.relations, relation)
	return nil
}

func (h *Handler) DeleteRelations(_ context.Context, id uuid.UUID, includeContentDefined bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.get(id)
	if err != nil {
		return err
	}
	res.relations = slices.DeleteFunc(res.relations, func(rel models_vfs.Relation) bool {
		return includeContentDefined || !rel.DefinedInContent
	})
	return nil
}

func (h *Handler) ParseLinks(_ context.Context, ids []uuid.UUID) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range ids {
		if _, err := h.get(id); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) ResourceType(_ context.Context, id int) (models_vfs.ResourceType, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.types[id]
	if !ok {
		return models_vfs.ResourceType{ID: id}, nil
	}
	return t, nil
}

func (h *Handler) ReinitializeTypes(_ context.Context) error {
	return nil
}

func (h *Handler) CreateProject(_ context.Context, name string) (models_vfs.Project, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := models_vfs.Project{ID: uuid.New(), Name: name}
	h.projects[p.ID] = p
	return p, nil
}

// CopyToProject locks all resources below path for the project selected by ctx.
func (h *Handler) CopyToProject(ctx context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := models_vfs.ProjectFromContext(ctx); !ok {
		return models_error.NotFoundErr
	}
	folder := strings.TrimSuffix(path, "/")
	for _, res := range h.offline {
		p := res.attributes.Path
		if strings.TrimSuffix(p, "/") == folder || strings.HasPrefix(p, folder+"/") {
			if res.attributes.Lock.IsUnlocked() {
				res.attributes.Lock = newLock(ctx, models_vfs.Temporary)
			}
		}
	}
	return nil
}

func (h *Handler) PublishProject(_ context.Context, id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.projects[id]; !ok {
		return models_error.NotFoundErr
	}
	online := make(map[uuid.UUID]*resource, len(h.offline))
	for sid, res := range h.offline {
		if res.attributes.Lock.ProjectID == id {
			res.attributes.Lock = models_vfs.Lock{}
		}
		online[sid] = res.clone()
	}
	h.online = online
	delete(h.projects, id)
	return nil
}

// DeleteProject removes an unpublished project and releases its locks.
func (h *Handler) DeleteProject(_ context.Context, id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.projects[id]; !ok {
		return models_error.NotFoundErr
	}
	for _, res := range h.offline {
		if res.attributes.Lock.ProjectID == id {
			res.attributes.Lock = models_vfs.Lock{}
		}
	}
	delete(h.projects, id)
	return nil
}

func (h *Handler) PauseIndexing(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
	return nil
}

func (h *Handler) ResumeIndexing(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
	return nil
}

func (h *Handler) IndexingPaused() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.paused
}

func (h *Handler) view(view models_vfs.View) map[uuid.UUID]*resource {
	if view == models_vfs.Online {
		return h.online
	}
	return h.offline
}

func (h *Handler) byPath(resources map[uuid.UUID]*resource, path string) (*resource, bool) {
	p := strings.TrimSuffix(path, "/")
	for _, res := range resources {
		if strings.TrimSuffix(res.attributes.Path, "/") == p {
			return res, true
		}
	}
	return nil, false
}

func (h *Handler) get(id uuid.UUID) (*resource, error) {
	res, ok := h.offline[id]
	if !ok {
		return nil, models_error.NotFoundErr
	}
	return res, nil
}

func (h *Handler) lock(ctx context.Context, res *resource, lockType models_vfs.LockType) error {
	projectID, _ := models_vfs.ProjectFromContext(ctx)
	current := res.attributes.Lock
	if !current.IsUnlocked() && current.ProjectID != projectID && current.Type == models_vfs.Exclusive {
		return models_error.LockedErr
	}
	res.attributes.Lock = newLock(ctx, lockType)
	return nil
}

func newLock(ctx context.Context, lockType models_vfs.LockType) models_vfs.Lock {
	projectID, _ := models_vfs.ProjectFromContext(ctx)
	return models_vfs.Lock{Type: lockType, ProjectID: projectID}
}
