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

package file_sys

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"testing"
	"testing/fstest"
)

func TestFindFile(t *testing.T) {
	fSys := fstest.MapFS{
		"pkg/a.txt":            {Data: []byte("a")},
		"pkg/sub/manifest.yml": {Data: []byte("b")},
	}
	p, err := FindFile(fSys, func(v string) bool {
		return v == "manifest.yml"
	})
	if err != nil {
		t.Fatal(err)
	}
	if p != "pkg/sub/manifest.yml" {
		t.Errorf("expected %s, got %s", "pkg/sub/manifest.yml", p)
	}
	t.Run("error", func(t *testing.T) {
		_, err := FindFile(fSys, func(v string) bool {
			return v == "missing"
		})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected not exist error, got %v", err)
		}
	})
}

func TestSpoolFile(t *testing.T) {
	tmpDir := t.TempDir()
	fSys := fstest.MapFS{"f1": {Data: []byte("file 1")}}
	p, err := SpoolFile(fSys, "f1", tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if path.Dir(p) != tmpDir {
		t.Errorf("expected file in %s, got %s", tmpDir, p)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "file 1" {
		t.Errorf("expected: %s, got: %s", "file 1", string(b))
	}
	t.Run("error", func(t *testing.T) {
		t.Run("source does not exist", func(t *testing.T) {
			if _, err := SpoolFile(fSys, "f3", tmpDir); err == nil {
				t.Error("expected error")
			}
		})
		t.Run("invalid destination", func(t *testing.T) {
			if _, err := SpoolFile(fSys, "f1", path.Join(tmpDir, "does_not_exist")); err == nil {
				t.Error("expected error")
			}
		})
	})
}
