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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

func TestClient_ReadResource(t *testing.T) {
	id := uuid.New()
	projectID := uuid.New()
	var header atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /resources", func(w http.ResponseWriter, r *http.Request) {
		header.Store(r.Header.Get(projectHeaderKey))
		if r.URL.Query().Get("path") != "/a.html" || r.URL.Query().Get("view") != "online" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(models_vfs.Resource{StructureID: id, Path: "/a.html"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.Client(), Config{BaseURL: srv.URL})
	ctx := models_vfs.ContextWithProject(context.Background(), projectID)
	res, found, err := c.ReadResource(ctx, models_vfs.Online, "/a.html")
	if err != nil {
		t.Fatal(err)
	}
	if !found || res.StructureID != id {
		t.Errorf("unexpected resource %+v", res)
	}
	if header.Load() != projectID.String() {
		t.Errorf("expected project header %s, got %v", projectID, header.Load())
	}
	t.Run("not found", func(t *testing.T) {
		_, found, err := c.ReadResource(ctx, models_vfs.Online, "/b.html")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Error("expected not found")
		}
	})
}

func TestClient_Errors(t *testing.T) {
	var calls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /resources/{id}/lock", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "locked by other project", http.StatusLocked)
	})
	mux.HandleFunc("GET /resources/{id}/content", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "internal", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.Client(), Config{BaseURL: srv.URL, BreakerThreshold: 2})
	err := c.LockResource(context.Background(), uuid.New(), models_vfs.Temporary)
	if !errors.Is(err, models_error.LockedErr) {
		t.Errorf("expected LockedErr, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err = c.ReadContent(context.Background(), uuid.New()); err == nil {
			t.Error("expected error")
		}
	}
	if !c.BreakerTripped() {
		t.Fatal("expected breaker to be tripped")
	}
	n := calls.Load()
	if _, err = c.ReadContent(context.Background(), uuid.New()); !errors.Is(err, ErrBackendDown) {
		t.Errorf("expected ErrBackendDown, got %v", err)
	}
	if calls.Load() != n {
		t.Error("expected no request while breaker is open")
	}
}

func TestClient_PublishProject(t *testing.T) {
	id := uuid.New()
	var polls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /projects/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /projects/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(publishStatus{Running: polls.Add(1) < 3})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.Client(), Config{BaseURL: srv.URL, PublishPollInterval: time.Millisecond * 10, PublishMaxWait: time.Second * 10})
	if err := c.PublishProject(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if polls.Load() != 3 {
		t.Errorf("expected 3 polls, got %d", polls.Load())
	}
	t.Run("error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /projects/{id}/publish", func(w http.ResponseWriter, r *http.Request) {})
		mux.HandleFunc("GET /projects/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(publishStatus{Error: "broken link"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		c := New(srv.Client(), Config{BaseURL: srv.URL, PublishPollInterval: time.Millisecond * 10})
		if err := c.PublishProject(context.Background(), id); err == nil {
			t.Error("expected error")
		}
	})
}

func TestClient_DeleteProject(t *testing.T) {
	resID := uuid.New()
	projectID := uuid.New()
	var unlocked, deleted atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /resources/{id}/lock", func(w http.ResponseWriter, r *http.Request) {
		unlocked.Store(r.PathValue("id"))
	})
	mux.HandleFunc("DELETE /projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(r.PathValue("id"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.Client(), Config{BaseURL: srv.URL})
	ctx := models_vfs.ContextWithProject(context.Background(), projectID)
	if err := c.UnlockResource(ctx, resID); err != nil {
		t.Fatal(err)
	}
	if unlocked.Load() != resID.String() {
		t.Errorf("expected unlock of %s, got %v", resID, unlocked.Load())
	}
	if err := c.DeleteProject(ctx, projectID); err != nil {
		t.Fatal(err)
	}
	if deleted.Load() != projectID.String() {
		t.Errorf("expected deletion of %s, got %v", projectID, deleted.Load())
	}
	t.Run("error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		c := New(srv.Client(), Config{BaseURL: srv.URL})
		if err := c.DeleteProject(ctx, projectID); !errors.Is(err, models_error.NotFoundErr) {
			t.Errorf("expected NotFoundErr, got %v", err)
		}
	})
}
