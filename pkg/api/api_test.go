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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/cms-module-manager/pkg/models/job"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
)

type serviceMock struct {
	Mods     []models_module.Module
	Forward  bool
	PkgPath  string
	Preserve bool
	Err      error
}

func (m *serviceMock) Modules(_ context.Context) ([]models_module.Module, error) {
	return m.Mods, m.Err
}

func (m *serviceMock) Module(_ context.Context, name string) (models_module.Module, error) {
	for _, mod := range m.Mods {
		if mod.Name() == name {
			return mod, nil
		}
	}
	return models_module.Module{}, fmt.Errorf("module '%s': %w", name, models_error.NotFoundErr)
}

func (m *serviceMock) ModuleDependencies(_ context.Context, _ string, forward bool) ([]string, error) {
	m.Forward = forward
	return []string{"demo.b"}, m.Err
}

func (m *serviceMock) ExportPoints(_ context.Context) ([]models_module.ExportPoint, error) {
	return nil, m.Err
}

func (m *serviceMock) ImportOrder(_ context.Context, _ string) ([]string, error) {
	return nil, m.Err
}

func (m *serviceMock) ImportModule(_ context.Context, pkgPath string) (string, error) {
	m.PkgPath = pkgPath
	return "job-1", m.Err
}

func (m *serviceMock) ReplaceModule(_ context.Context, _, pkgPath string) (string, error) {
	m.PkgPath = pkgPath
	return "job-2", m.Err
}

func (m *serviceMock) DeleteModule(_ context.Context, _ string, preserveLibs bool) (string, error) {
	m.Preserve = preserveLibs
	return "job-3", m.Err
}

func (m *serviceMock) Jobs(_ context.Context, _ models_job.Filter) ([]models_job.Job, error) {
	return nil, m.Err
}

func (m *serviceMock) Job(_ context.Context, _ string) (models_job.Job, error) {
	return models_job.Job{}, models_error.NotFoundErr
}

func (m *serviceMock) CancelJob(_ context.Context, _ string) error {
	return m.Err
}

func (m *serviceMock) Health(_ context.Context) error {
	return m.Err
}

func newTestApi(t *testing.T, srv *serviceMock) http.Handler {
	a, err := New(srv, srv_info_hdl.New("test", "0.0.0"), slog.Default(), false)
	if err != nil {
		t.Fatal(err)
	}
	return a.Handler()
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApi_Modules(t *testing.T) {
	mod, err := models_module.NewBuilder("demo.blog").SetVersion(models_module.MustParseVersion("1.0")).Build()
	if err != nil {
		t.Fatal(err)
	}
	srv := &serviceMock{Mods: []models_module.Module{mod}}
	h := newTestApi(t, srv)
	rec := serve(h, http.MethodGet, "/modules/demo.blog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res models_module.Module
	if err = json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Name() != "demo.blog" || res.Version().String() != "1.0" {
		t.Errorf("unexpected module %s", res)
	}
	if rec.Header().Get("X-Service") != "test" {
		t.Error("missing service header")
	}
	if rec = serve(h, http.MethodGet, "/modules/demo.other", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec = serve(h, http.MethodGet, "/modules/demo.blog/dependencies?direction=forward", ""); rec.Code != http.StatusOK || !srv.Forward {
		t.Errorf("expected forward dependencies, got %d", rec.Code)
	}
	if rec = serve(h, http.MethodGet, "/modules/demo.blog/dependencies?direction=sideways", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestApi_ModuleJobs(t *testing.T) {
	srv := &serviceMock{}
	h := newTestApi(t, srv)
	rec := serve(h, http.MethodPost, "/modules", `{"path":"/pkg/demo.blog.zip"}`)
	if rec.Code != http.StatusOK || rec.Body.String() != "job-1" || srv.PkgPath != "/pkg/demo.blog.zip" {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(h, http.MethodPut, "/modules/demo.blog", `{"path":"/pkg/demo.blog.tgz"}`)
	if rec.Code != http.StatusOK || rec.Body.String() != "job-2" {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(h, http.MethodDelete, "/modules/demo.blog?preserve_libs=true", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "job-3" || !srv.Preserve {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	t.Run("error", func(t *testing.T) {
		if rec := serve(h, http.MethodPost, "/modules", `{"path":`); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		srv.Err = models_error.NewLockError([]string{"/system/modules/demo.blog/page.html"})
		if rec := serve(h, http.MethodDelete, "/modules/demo.blog", ""); rec.Code != http.StatusLocked {
			t.Errorf("expected 423, got %d", rec.Code)
		}
		if rec := serve(h, http.MethodGet, "/jobs/x", ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		srv.Err = errors.New("test")
		if rec := serve(h, http.MethodGet, "/health", ""); rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestGetStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("module 'x': %w", models_error.NotFoundErr), http.StatusNotFound},
		{models_error.DuplicateErr, http.StatusConflict},
		{models_error.NewDependencyError("demo.a", "is required by", []string{"demo.b"}), http.StatusConflict},
		{models_error.NewCycleError([]string{"demo.a", "demo.b"}), http.StatusConflict},
		{models_error.NewConflictError(errors.New("test")), http.StatusConflict},
		{models_error.NewLockError([]string{"/a"}), http.StatusLocked},
		{fmt.Errorf("test: %w", models_error.LockedErr), http.StatusLocked},
		{models_error.NewValidationError(errors.New("test")), http.StatusBadRequest},
		{models_error.NewParseError("manifest.yml", errors.New("test")), http.StatusBadRequest},
		{newInvalidInputError(errors.New("test")), http.StatusBadRequest},
		{errors.New("test"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if code := getStatusCode(c.err); code != c.code {
			t.Errorf("%v: expected %d, got %d", c.err, c.code, code)
		}
	}
}
