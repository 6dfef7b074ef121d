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
	"io"
	"log/slog"
	"os"
	"path"
	"slices"
	"testing"
	"time"

	handler_vfs_memory "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/vfs_memory"
	helper_report "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/report"
	models_import "github.com/SENERGY-Platform/cms-module-manager/pkg/models/import_data"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

var testTime = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

func TestNeedToUpdateResourceFields(t *testing.T) {
	existing := models_vfs.Resource{
		TypeID:           1,
		Flags:            2,
		DateCreated:      testTime,
		DateLastModified: testTime,
		UserCreated:      uuid.MustParse("00000000-0000-0000-0000-000000000001"),
	}
	entry := &models_import.ResourceEntry{Attributes: existing, HasDateLastModified: true}
	if NeedToUpdateResourceFields(existing, entry, false) {
		t.Error("expected false for identical fields")
	}
	entry.Attributes.DateCreated = testTime.Add(time.Millisecond * 900)
	if NeedToUpdateResourceFields(existing, entry, false) {
		t.Error("expected difference below tolerance to be ignored")
	}
	entry.Attributes.DateCreated = testTime.Add(-time.Millisecond * 1001)
	if !NeedToUpdateResourceFields(existing, entry, false) {
		t.Error("expected true for created date drift")
	}
	entry.Attributes = existing
	entry.Attributes.Flags = 3
	if !NeedToUpdateResourceFields(existing, entry, false) {
		t.Error("expected true for flags drift")
	}
	entry.Attributes = existing
	entry.Attributes.DateLastModified = testTime.Add(time.Hour)
	entry.Attributes.UserLastModified = uuid.New()
	if !NeedToUpdateResourceFields(existing, entry, false) {
		t.Error("expected true for last modified drift")
	}
	if NeedToUpdateResourceFields(existing, entry, true) {
		t.Error("expected modification fields to be ignored for reduced entries")
	}
}

type vfsSpy struct {
	*handler_vfs_memory.Handler
	imports    []string
	propWrites int
	grants     []uuid.UUID
	revokes    []uuid.UUID
	deletes    int
	publishes  int
}

func (s *vfsSpy) ImportResource(ctx context.Context, p string, attributes models_vfs.Resource, content io.Reader, properties []models_vfs.Property) (models_vfs.Resource, error) {
	s.imports = append(s.imports, p)
	return s.Handler.ImportResource(ctx, p, attributes, content, properties)
}

func (s *vfsSpy) WriteProperties(ctx context.Context, id uuid.UUID, properties []models_vfs.Property) error {
	s.propWrites++
	return s.Handler.WriteProperties(ctx, id, properties)
}

func (s *vfsSpy) GrantAccessControlEntry(ctx context.Context, id uuid.UUID, ace models_vfs.AccessControlEntry) error {
	s.grants = append(s.grants, ace.PrincipalID)
	return s.Handler.GrantAccessControlEntry(ctx, id, ace)
}

func (s *vfsSpy) RevokeAccessControlEntry(ctx context.Context, id uuid.UUID, principalID uuid.UUID) error {
	s.revokes = append(s.revokes, principalID)
	return s.Handler.RevokeAccessControlEntry(ctx, id, principalID)
}

func (s *vfsSpy) DeleteResource(ctx context.Context, id uuid.UUID, preserveSiblings bool) error {
	s.deletes++
	return s.Handler.DeleteResource(ctx, id, preserveSiblings)
}

func (s *vfsSpy) PublishProject(ctx context.Context, id uuid.UUID) error {
	s.publishes++
	return s.Handler.PublishProject(ctx, id)
}

func (s *vfsSpy) reset() {
	s.imports = nil
	s.propWrites = 0
	s.grants = nil
	s.revokes = nil
	s.deletes = 0
	s.publishes = 0
}

type scriptShellMock struct {
	Scripts []string
	Output  string
	Err     error
}

func (m *scriptShellMock) Execute(_ context.Context, script string, _ map[string]string) (string, error) {
	m.Scripts = append(m.Scripts, script)
	return m.Output, m.Err
}

type testResource struct {
	path    string
	id      uuid.UUID
	content string
	folder  bool
	props   []models_vfs.Property
	acl     []models_vfs.AccessControlEntry
}

func (r testResource) attributes() models_vfs.Resource {
	typeID := 1
	if r.folder {
		typeID = 0
	}
	return models_vfs.Resource{
		StructureID:      r.id,
		ResourceID:       r.id,
		TypeID:           typeID,
		Folder:           r.folder,
		DateCreated:      testTime,
		DateLastModified: testTime,
	}
}

func seed(t *testing.T, vfs *handler_vfs_memory.Handler, resources ...testResource) {
	ctx := context.Background()
	project, err := vfs.CreateProject(ctx, "seed")
	if err != nil {
		t.Fatal(err)
	}
	pCtx := models_vfs.ContextWithProject(ctx, project.ID)
	for _, r := range resources {
		var content io.Reader
		if !r.folder {
			content = bytes.NewReader([]byte(r.content))
		}
		if _, err = vfs.ImportResource(pCtx, r.path, r.attributes(), content, r.props); err != nil {
			t.Fatal(err)
		}
		for _, ace := range r.acl {
			if err = vfs.GrantAccessControlEntry(pCtx, r.id, ace); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err = vfs.PublishProject(ctx, project.ID); err != nil {
		t.Fatal(err)
	}
}

func stage(t *testing.T, mod models_module.Module, resources ...testResource) *models_import.ModuleImport {
	data := models_import.New(mod, "10")
	dir := t.TempDir()
	for i, r := range resources {
		entry := &models_import.ResourceEntry{
			Path:                r.path,
			Attributes:          r.attributes(),
			Properties:          r.props,
			AccessControl:       r.acl,
			HasStructureID:      r.id != uuid.Nil,
			HasDateLastModified: true,
		}
		if !entry.HasStructureID {
			entry.Attributes.StructureID = uuid.New()
		}
		if !r.folder {
			p := path.Join(dir, string(rune('a'+i)))
			if err := os.WriteFile(p, []byte(r.content), 0660); err != nil {
				t.Fatal(err)
			}
			entry.SetContentPath(p)
		}
		data.Entries = append(data.Entries, entry)
	}
	return data
}

func testModule(t *testing.T, version string, checkpoint time.Time) models_module.Module {
	mod, err := models_module.NewBuilder("demo.blog").
		SetVersion(models_module.MustParseVersion(version)).
		AddResource("/system/modules/demo.blog/").
		SetCheckpointTime(checkpoint).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return mod
}

type commitRecorder struct {
	mods []models_module.Module
}

func (c *commitRecorder) commit(_ context.Context, mod models_module.Module) error {
	c.mods = append(c.mods, mod)
	return nil
}

var (
	folderID = uuid.MustParse("10000000-0000-0000-0000-000000000000")
	xID      = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	yID      = uuid.MustParse("10000000-0000-0000-0000-000000000002")
	userA    = uuid.MustParse("20000000-0000-0000-0000-000000000001")
	userB    = uuid.MustParse("20000000-0000-0000-0000-000000000002")
)

func TestUpdater_Run(t *testing.T) {
	InitLogger(slog.Default())
	folder := testResource{path: "/system/modules/demo.blog/", id: folderID, folder: true}
	x := testResource{
		path:    "/system/modules/demo.blog/page.html",
		id:      xID,
		content: "<html/>",
		props:   []models_vfs.Property{{Name: "Title", Value: "Page"}},
		acl:     []models_vfs.AccessControlEntry{{PrincipalID: userA, Allowed: 1}},
	}
	y := testResource{path: "/system/modules/demo.blog/old.html", id: yID, content: "old"}
	t.Run("skip unchanged", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		spy := &vfsSpy{Handler: mem}
		rep := helper_report.New(nil)
		recorder := &commitRecorder{}
		installed := testModule(t, "1.0", testTime)
		err := New(spy, &scriptShellMock{}).Run(context.Background(), stage(t, testModule(t, "1.1", time.Time{}), folder, x), installed, recorder.commit, rep)
		if err != nil {
			t.Fatal(err)
		}
		if len(spy.imports) != 0 || spy.propWrites != 0 || len(spy.grants) != 0 || len(spy.revokes) != 0 {
			t.Errorf("expected no writes, got imports=%v props=%d grants=%d revokes=%d", spy.imports, spy.propWrites, len(spy.grants), len(spy.revokes))
		}
		if !slices.Contains(rep.Lines(), "skip: "+x.path) {
			t.Errorf("expected skip line in %v", rep.Lines())
		}
		if spy.publishes != 1 {
			t.Errorf("expected 1 publish, got %d", spy.publishes)
		}
		res, _, _ := mem.ReadResourceByID(context.Background(), models_vfs.Offline, xID)
		if !res.Lock.IsUnlocked() {
			t.Error("expected resource unlocked after publish")
		}
		if len(recorder.mods) != 1 || recorder.mods[0].Version().String() != "1.1" {
			t.Error("module not committed")
		}
	})
	t.Run("import on flags drift", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		spy := &vfsSpy{Handler: mem}
		data := stage(t, testModule(t, "1.1", time.Time{}), folder, x)
		data.Entries[1].Attributes.Flags = 8
		recorder := &commitRecorder{}
		err := New(spy, &scriptShellMock{}).Run(context.Background(), data, testModule(t, "1.0", testTime), recorder.commit, helper_report.New(nil))
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(spy.imports, []string{x.path}) {
			t.Errorf("expected import of %s, got %v", x.path, spy.imports)
		}
		res, _, _ := mem.ReadResourceByID(context.Background(), models_vfs.Online, xID)
		if res.Flags != 8 {
			t.Errorf("expected flags 8, got %d", res.Flags)
		}
	})
	t.Run("import on content drift", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		spy := &vfsSpy{Handler: mem}
		x2 := x
		x2.content = "<html>new</html>"
		recorder := &commitRecorder{}
		err := New(spy, &scriptShellMock{}).Run(context.Background(), stage(t, testModule(t, "1.1", time.Time{}), folder, x2), testModule(t, "1.0", testTime), recorder.commit, helper_report.New(nil))
		if err != nil {
			t.Fatal(err)
		}
		b, err := mem.ReadContent(context.Background(), xID)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != x2.content {
			t.Errorf("expected %s, got %s", x2.content, string(b))
		}
	})
	t.Run("delete obsolete", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x, y)
		spy := &vfsSpy{Handler: mem}
		rep := helper_report.New(nil)
		recorder := &commitRecorder{}
		installed := testModule(t, "1.0", testTime)
		err := New(spy, &scriptShellMock{}).Run(context.Background(), stage(t, testModule(t, "1.1", time.Time{}), folder, x), installed, recorder.commit, rep)
		if err != nil {
			t.Fatal(err)
		}
		if _, found, _ := mem.ReadResourceByID(context.Background(), models_vfs.Online, yID); found {
			t.Error("expected y to be deleted")
		}
		if _, found, _ := mem.ReadResourceByID(context.Background(), models_vfs.Online, xID); !found {
			t.Error("expected x to remain")
		}
		if spy.deletes != 1 {
			t.Errorf("expected 1 delete, got %d", spy.deletes)
		}
		if !slices.Contains(rep.Lines(), "delete: "+y.path) {
			t.Errorf("expected delete line in %v", rep.Lines())
		}
		if len(recorder.mods) != 1 {
			t.Fatal("module not committed")
		}
		if !recorder.mods[0].CheckpointTime().After(installed.CheckpointTime()) {
			t.Errorf("expected checkpoint after %s, got %s", installed.CheckpointTime(), recorder.mods[0].CheckpointTime())
		}
	})
	t.Run("access control swap", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		x2 := x
		x2.acl = []models_vfs.AccessControlEntry{{PrincipalID: userA, Allowed: 1}, {PrincipalID: userB, Allowed: 1}}
		seed(t, mem, folder, x2)
		spy := &vfsSpy{Handler: mem}
		x3 := x
		x3.acl = []models_vfs.AccessControlEntry{{PrincipalID: userA, Allowed: 3}, {PrincipalID: userB, Allowed: 1}}
		recorder := &commitRecorder{}
		err := New(spy, &scriptShellMock{}).Run(context.Background(), stage(t, testModule(t, "1.1", time.Time{}), folder, x3), testModule(t, "1.0", testTime), recorder.commit, helper_report.New(nil))
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(spy.revokes, []uuid.UUID{userA}) || !slices.Equal(spy.grants, []uuid.UUID{userA}) {
			t.Errorf("expected one revoke and one grant for %s, got revokes=%v grants=%v", userA, spy.revokes, spy.grants)
		}
		entries, err := mem.ReadAccessControlEntries(context.Background(), xID)
		if err != nil {
			t.Fatal(err)
		}
		for _, ace := range entries {
			if ace.PrincipalID == userA && ace.Allowed != 3 {
				t.Errorf("expected allowed 3, got %d", ace.Allowed)
			}
		}
	})
	t.Run("properties", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		x2 := x
		x2.props = []models_vfs.Property{{Name: "Title", Value: "Page"}, {Name: "Keywords", Value: "a"}}
		seed(t, mem, folder, x2)
		spy := &vfsSpy{Handler: mem}
		x3 := x
		x3.props = []models_vfs.Property{{Name: "Title", Value: "New"}}
		recorder := &commitRecorder{}
		err := New(spy, &scriptShellMock{}).Run(context.Background(), stage(t, testModule(t, "1.1", time.Time{}), folder, x3), testModule(t, "1.0", testTime), recorder.commit, helper_report.New(nil))
		if err != nil {
			t.Fatal(err)
		}
		props, err := mem.ReadProperties(context.Background(), xID)
		if err != nil {
			t.Fatal(err)
		}
		a := []models_vfs.Property{{Name: "Keywords", Value: ""}, {Name: "Title", Value: "New"}}
		if !slices.Equal(a, props) {
			t.Errorf("expected %v, got %v", a, props)
		}
	})
	t.Run("move", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		x2 := x
		x2.path = "/system/modules/demo.blog/moved.html"
		rep := helper_report.New(nil)
		recorder := &commitRecorder{}
		err := New(mem, &scriptShellMock{}).Run(context.Background(), stage(t, testModule(t, "1.1", time.Time{}), folder, x2), testModule(t, "1.0", testTime), recorder.commit, rep)
		if err != nil {
			t.Fatal(err)
		}
		res, found, _ := mem.ReadResourceByID(context.Background(), models_vfs.Online, xID)
		if !found || res.Path != x2.path {
			t.Errorf("expected resource at %s, got %s", x2.path, res.Path)
		}
		if !slices.Contains(rep.Lines(), "ok: "+x2.path) {
			t.Errorf("expected ok line in %v", rep.Lines())
		}
	})
	t.Run("import script", func(t *testing.T) {
		mem := handler_vfs_memory.New()
		seed(t, mem, folder, x)
		shell := &scriptShellMock{Output: "+ echo done\ndone\n"}
		mod, err := models_module.From(testModule(t, "1.1", time.Time{})).SetImportScript("echo done").Build()
		if err != nil {
			t.Fatal(err)
		}
		rep := helper_report.New(nil)
		recorder := &commitRecorder{}
		err = New(mem, shell).Run(context.Background(), stage(t, mod, folder, x), testModule(t, "1.0", testTime), recorder.commit, rep)
		if err != nil {
			t.Fatal(err)
		}
		if len(shell.Scripts) != 1 {
			t.Error("script not executed")
		}
		if !slices.Contains(rep.Lines(), "done") {
			t.Errorf("expected script output in %v", rep.Lines())
		}
	})
}
