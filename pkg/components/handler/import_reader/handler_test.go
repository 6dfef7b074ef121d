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

package import_reader

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"testing"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	"github.com/google/uuid"
)

const testManifest = `info:
  export_version: "10"
module:
  name: demo.blog
  nice_name: Blog
  version: "1.0"
  author:
    name: Jane
    email: jane@example.org
  dependencies:
    - name: demo.base
      version: "1.2"
  export_points:
    - uri: /system/modules/demo.blog/lib/
      destination: WEB-INF/lib/
  resources:
    - /system/modules/demo.blog/
  parameters:
    key: value
files:
  - destination: system/modules/demo.blog
    folder: true
    type: 0
    structure_id: 7b6a8f4e-1f3c-4c1e-9a6e-0d0b0a0c0e01
  - destination: system/modules/demo.blog/page.html
    source: system/modules/demo.blog/page.html
    type: 1
    flags: 4
    structure_id: 7b6a8f4e-1f3c-4c1e-9a6e-0d0b0a0c0e02
    date_created: 2024-05-01T10:00:00Z
    date_last_modified: 2024-05-02T10:00:00Z
    properties:
      - name: Title
        value: Page
    access_control:
      - principal_id: 7b6a8f4e-1f3c-4c1e-9a6e-0d0b0a0c0eff
        allowed: 3
    relations:
      - target_path: /system/modules/demo.blog/img.png
        type: ATTACHMENT
  - destination: system/modules/demo.blog/new.html
    source: system/modules/demo.blog/page.html
    type: 1
`

func writeTestPackage(t *testing.T, dir string) {
	if err := os.MkdirAll(path.Join(dir, "system/modules/demo.blog"), 0775); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path.Join(dir, "manifest.yml"), []byte(testManifest), 0664); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path.Join(dir, "system/modules/demo.blog/page.html"), []byte("<html/>"), 0664); err != nil {
		t.Fatal(err)
	}
}

func writeTarGz(t *testing.T, srcDir, dst string) {
	file, err := os.Create(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	gw := gzip.NewWriter(file)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()
	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil || rel == "." {
			return err
		}
		name := path.Join("pkg", filepath.ToSlash(rel))
		if d.IsDir() {
			return tw.WriteHeader(&tar.Header{Name: name + "/", Typeflag: tar.TypeDir, Mode: 0775})
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err = tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0664, Size: int64(len(b))}); err != nil {
			return err
		}
		_, err = tw.Write(b)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHandler_ReadModuleData(t *testing.T) {
	InitLogger(slog.Default())
	pkgDir := t.TempDir()
	writeTestPackage(t, pkgDir)
	workDir := t.TempDir()
	h := New(Config{WorkDirPath: workDir})
	if err := h.Init(); err != nil {
		t.Fatal(err)
	}
	check := func(t *testing.T, pkgPath string) {
		data, err := h.ReadModuleData(context.Background(), pkgPath)
		if err != nil {
			t.Fatal(err)
		}
		defer data.Cleanup()
		mod := data.Module
		if mod.Name() != "demo.blog" || mod.Version().String() != "1.0" {
			t.Errorf("unexpected module %s", mod)
		}
		if data.ExportVersion != ExportVersion {
			t.Errorf("expected export version %s, got %s", ExportVersion, data.ExportVersion)
		}
		if len(mod.Dependencies()) != 1 || mod.Dependencies()[0].Version.String() != "1.2" {
			t.Errorf("unexpected dependencies %v", mod.Dependencies())
		}
		if v, _ := mod.Parameter("key"); v != "value" {
			t.Error("missing parameter")
		}
		if len(data.Entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(data.Entries))
		}
		folder := data.Entries[0]
		if folder.Path != "/system/modules/demo.blog/" || !folder.Attributes.Folder || folder.HasContent() {
			t.Errorf("unexpected folder entry %+v", folder)
		}
		if !folder.Reduced() {
			t.Error("expected reduced entry")
		}
		page := data.Entries[1]
		if page.Path != "/system/modules/demo.blog/page.html" {
			t.Errorf("unexpected path %s", page.Path)
		}
		if !page.HasStructureID || page.Attributes.StructureID != uuid.MustParse("7b6a8f4e-1f3c-4c1e-9a6e-0d0b0a0c0e02") {
			t.Error("wrong structure id")
		}
		if !page.HasDateLastModified || page.Reduced() {
			t.Error("expected last modified date")
		}
		if page.Attributes.Flags != 4 || page.Attributes.TypeID != 1 {
			t.Error("wrong attributes")
		}
		b, err := page.ReadContent()
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "<html/>" {
			t.Errorf("expected <html/>, got %s", string(b))
		}
		if len(page.Properties) != 1 || len(page.AccessControl) != 1 || len(page.Relations) != 1 {
			t.Error("missing properties, access control entries or relations")
		}
		if data.Entries[2].HasStructureID {
			t.Error("expected generated structure id")
		}
	}
	t.Run("dir", func(t *testing.T) {
		check(t, pkgDir)
	})
	t.Run("tar.gz", func(t *testing.T) {
		archivePath := path.Join(t.TempDir(), "demo.blog.tar.gz")
		writeTarGz(t, pkgDir, archivePath)
		check(t, archivePath)
	})
	t.Run("cleanup", func(t *testing.T) {
		data, err := h.ReadModuleData(context.Background(), pkgDir)
		if err != nil {
			t.Fatal(err)
		}
		if err = data.Cleanup(); err != nil {
			t.Fatal(err)
		}
		entries, err := os.ReadDir(workDir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty work dir, got %d entries", len(entries))
		}
	})
	t.Run("error", func(t *testing.T) {
		t.Run("manifest missing", func(t *testing.T) {
			_, err := h.ReadModuleData(context.Background(), t.TempDir())
			var pErr *models_error.ParseError
			if !errors.As(err, &pErr) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
		t.Run("malformed manifest", func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(path.Join(dir, "manifest.yml"), []byte("module: ["), 0664); err != nil {
				t.Fatal(err)
			}
			_, err := h.ReadModuleData(context.Background(), dir)
			var pErr *models_error.ParseError
			if !errors.As(err, &pErr) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
		t.Run("content missing", func(t *testing.T) {
			dir := t.TempDir()
			writeTestPackage(t, dir)
			if err := os.Remove(path.Join(dir, "system/modules/demo.blog/page.html")); err != nil {
				t.Fatal(err)
			}
			_, err := h.ReadModuleData(context.Background(), dir)
			if err == nil {
				t.Error("expected error")
			}
		})
		t.Run("unsupported format", func(t *testing.T) {
			p := path.Join(t.TempDir(), "pkg.rar")
			if err := os.WriteFile(p, []byte("x"), 0664); err != nil {
				t.Fatal(err)
			}
			_, err := h.ReadModuleData(context.Background(), p)
			if err == nil {
				t.Error("expected error")
			}
		})
	})
}

func TestHandler_ReadModule(t *testing.T) {
	InitLogger(slog.Default())
	pkgDir := t.TempDir()
	writeTestPackage(t, pkgDir)
	h := New(Config{WorkDirPath: t.TempDir()})
	mod, err := h.ReadModule(context.Background(), pkgDir)
	if err != nil {
		t.Fatal(err)
	}
	if mod.Name() != "demo.blog" {
		t.Errorf("expected demo.blog, got %s", mod.Name())
	}
	if len(mod.ExportPoints()) != 1 {
		t.Error("missing export point")
	}
}
