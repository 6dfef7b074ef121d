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
	"testing"
	"time"

	handler_vfs_memory "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/vfs_memory"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/google/uuid"
)

func TestGate_CheckUpdatable(t *testing.T) {
	folder := testResource{path: "/system/modules/demo.blog/", id: folderID, folder: true}
	x := testResource{path: "/system/modules/demo.blog/page.html", id: xID, content: "<html/>"}
	ctx := context.Background()
	t.Run("updatable", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed := testModule(t, "1.0", testTime)
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, stage(t, testModule(t, "1.1", time.Time{}), folder, x))
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Error("expected true")
		}
	})
	t.Run("not installed", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, nil, stage(t, testModule(t, "1.1", time.Time{}), folder, x))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected false")
		}
	})
	t.Run("export version mismatch", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed := testModule(t, "1.0", testTime)
		data := stage(t, testModule(t, "1.1", time.Time{}), folder, x)
		data.ExportVersion = "7"
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, data)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected false")
		}
	})
	t.Run("site mismatch", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed, err := models_module.From(testModule(t, "1.0", testTime)).AddResource("/sites/default/blog/").SetSite("/sites/default/").Build()
		if err != nil {
			t.Fatal(err)
		}
		mod, err := models_module.From(testModule(t, "1.1", time.Time{})).AddResource("/sites/default/blog/").SetSite("/sites/other/").Build()
		if err != nil {
			t.Fatal(err)
		}
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, stage(t, mod, folder, x))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected false")
		}
	})
	t.Run("missing structure id", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed := testModule(t, "1.0", testTime)
		n := testResource{path: "/system/modules/demo.blog/new.html", content: "new"}
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, stage(t, testModule(t, "1.1", time.Time{}), folder, x, n))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected false")
		}
	})
	t.Run("missing structure id outside module", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed := testModule(t, "1.0", testTime)
		n := testResource{path: "/system/other/new.html", content: "new"}
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, stage(t, testModule(t, "1.1", time.Time{}), folder, x, n))
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Error("expected true")
		}
	})
	t.Run("sibling", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed := testModule(t, "1.0", testTime)
		data := stage(t, testModule(t, "1.1", time.Time{}), folder, x)
		data.Entries[1].SetContentPath("")
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, data)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected false")
		}
	})
	t.Run("kind mismatch", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed := testModule(t, "1.0", testTime)
		x2 := testResource{path: x.path, id: xID, folder: true}
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, stage(t, testModule(t, "1.1", time.Time{}), folder, x2))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected false")
		}
	})
	t.Run("tolerable conflict", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		installed := testModule(t, "1.0", testTime)
		stagedID := uuid.New()
		x2 := testResource{path: x.path, id: stagedID, content: x.content}
		data := stage(t, testModule(t, "1.1", time.Time{}), folder, x2)
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, data)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected true")
		}
		id, ok := data.Conflict(stagedID)
		if !ok || id != xID {
			t.Errorf("expected conflict %s -> %s", stagedID, xID)
		}
	})
	t.Run("intolerable conflict", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		y := testResource{path: "/system/modules/demo.blog/other.html", id: yID, content: "y"}
		seed(t, mem, folder, x, y)
		installed := testModule(t, "1.0", testTime)
		x2 := testResource{path: x.path, id: yID, content: x.content}
		ok, err := NewGate(mem, "10").CheckUpdatable(ctx, &installed, stage(t, testModule(t, "1.1", time.Time{}), folder, x2))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected false")
		}
	})
}
