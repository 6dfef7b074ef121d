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
	"bytes"
	"context"
	"errors"
	"testing"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
)

func TestHandler(t *testing.T) {
	h := New()
	ctx := context.Background()
	project, err := h.CreateProject(ctx, "test")
	if err != nil {
		t.Fatal(err)
	}
	pCtx := models_vfs.ContextWithProject(ctx, project.ID)
	res, err := h.ImportResource(pCtx, "/a/b.html", models_vfs.Resource{TypeID: 1}, bytes.NewReader([]byte("b")), []models_vfs.Property{{Name: "Title", Value: "B"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Lock.ProjectID != project.ID {
		t.Error("expected resource locked by project")
	}
	if _, found, _ := h.ReadResource(ctx, models_vfs.Online, "/a/b.html"); found {
		t.Error("resource online before publish")
	}
	if err = h.PublishProject(ctx, project.ID); err != nil {
		t.Fatal(err)
	}
	online, found, err := h.ReadResource(ctx, models_vfs.Online, "/a/b.html")
	if err != nil || !found {
		t.Fatal("resource not online after publish")
	}
	if !online.Lock.IsUnlocked() {
		t.Error("expected lock released")
	}
	subtree, err := h.ReadSubtree(ctx, "/a/")
	if err != nil {
		t.Fatal(err)
	}
	if len(subtree) != 1 {
		t.Errorf("expected 1 resource, got %d", len(subtree))
	}
	props, err := h.ReadProperties(ctx, res.StructureID)
	if err != nil {
		t.Fatal(err)
	}
	if len(props) != 1 || props[0].Value != "B" {
		t.Errorf("unexpected properties %v", props)
	}
	t.Run("error", func(t *testing.T) {
		t.Run("locked", func(t *testing.T) {
			if err := h.LockResource(ctx, res.StructureID, models_vfs.Exclusive); err != nil {
				t.Fatal(err)
			}
			p2, _ := h.CreateProject(ctx, "other")
			err := h.LockResource(models_vfs.ContextWithProject(ctx, p2.ID), res.StructureID, models_vfs.Temporary)
			if !errors.Is(err, models_error.LockedErr) {
				t.Errorf("expected locked error, got %v", err)
			}
		})
		t.Run("not found", func(t *testing.T) {
			if err := h.DeleteResource(ctx, [16]byte{1}, true); !errors.Is(err, models_error.NotFoundErr) {
				t.Errorf("expected not found error, got %v", err)
			}
		})
	})
}

func TestHandler_DeleteProject(t *testing.T) {
	h := New()
	ctx := context.Background()
	seed, _ := h.CreateProject(ctx, "seed")
	res, err := h.ImportResource(models_vfs.ContextWithProject(ctx, seed.ID), "/a/b.html", models_vfs.Resource{TypeID: 1}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = h.PublishProject(ctx, seed.ID); err != nil {
		t.Fatal(err)
	}
	project, _ := h.CreateProject(ctx, "test")
	pCtx := models_vfs.ContextWithProject(ctx, project.ID)
	if err = h.CopyToProject(pCtx, "/a/"); err != nil {
		t.Fatal(err)
	}
	locked, _, _ := h.ReadResourceByID(ctx, models_vfs.Offline, res.StructureID)
	if locked.Lock.Type != models_vfs.Temporary || locked.Lock.ProjectID != project.ID {
		t.Fatalf("expected temporary lock held by project, got %+v", locked.Lock)
	}
	if err = h.DeleteProject(ctx, project.ID); err != nil {
		t.Fatal(err)
	}
	unlocked, _, _ := h.ReadResourceByID(ctx, models_vfs.Offline, res.StructureID)
	if !unlocked.Lock.IsUnlocked() {
		t.Errorf("expected lock released, got %+v", unlocked.Lock)
	}
	t.Run("error", func(t *testing.T) {
		if err := h.DeleteProject(ctx, project.ID); !errors.Is(err, models_error.NotFoundErr) {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestHandler_UnlockResource(t *testing.T) {
	h := New()
	ctx := context.Background()
	project, _ := h.CreateProject(ctx, "test")
	pCtx := models_vfs.ContextWithProject(ctx, project.ID)
	res, err := h.ImportResource(pCtx, "/a/b.html", models_vfs.Resource{TypeID: 1}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Run("error", func(t *testing.T) {
		other, _ := h.CreateProject(ctx, "other")
		if err := h.UnlockResource(models_vfs.ContextWithProject(ctx, other.ID), res.StructureID); !errors.Is(err, models_error.LockedErr) {
			t.Errorf("expected locked error, got %v", err)
		}
	})
	if err = h.UnlockResource(pCtx, res.StructureID); err != nil {
		t.Fatal(err)
	}
	unlocked, _, _ := h.ReadResourceByID(ctx, models_vfs.Offline, res.StructureID)
	if !unlocked.Lock.IsUnlocked() {
		t.Errorf("expected lock released, got %+v", unlocked.Lock)
	}
}
