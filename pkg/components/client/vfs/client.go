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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/cenk/backoff"
	"github.com/google/uuid"
	circuit "github.com/rubyist/circuitbreaker"
)

const projectHeaderKey = "X-Project-ID"

var ErrBackendDown = errors.New("vfs backend unavailable")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ models_vfs.Store = (*Client)(nil)

// Client accesses the VFS resource store over HTTP. All requests pass a circuit breaker that
// opens after consecutive transport or server failures.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	config     Config
	breaker    *circuit.Breaker
}

func New(httpClient HTTPClient, config Config) *Client {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 5 * time.Second
	expBackoff.MaxInterval = time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()
	threshold := config.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    config.BaseURL,
		config:     config,
		breaker: circuit.NewBreakerWithOptions(&circuit.Options{
			BackOff:    expBackoff,
			ShouldTrip: circuit.ThresholdTripFunc(threshold),
		}),
	}
}

func (c *Client) ReadResource(ctx context.Context, view models_vfs.View, path string) (models_vfs.Resource, bool, error) {
	var res models_vfs.Resource
	err := c.do(ctx, http.MethodGet, []string{"resources"}, url.Values{"view": {view.String()}, "path": {path}}, nil, &res)
	return found(res, err)
}

func (c *Client) ReadResourceByID(ctx context.Context, view models_vfs.View, id uuid.UUID) (models_vfs.Resource, bool, error) {
	var res models_vfs.Resource
	err := c.do(ctx, http.MethodGet, []string{"resources", id.String()}, url.Values{"view": {view.String()}}, nil, &res)
	return found(res, err)
}

func (c *Client) ReadSubtree(ctx context.Context, path string) ([]models_vfs.Resource, error) {
	var resources []models_vfs.Resource
	err := c.do(ctx, http.MethodGet, []string{"subtree"}, url.Values{"path": {path}}, nil, &resources)
	return resources, err
}

func (c *Client) ReadContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var b []byte
	err := c.do(ctx, http.MethodGet, []string{"resources", id.String(), "content"}, nil, nil, &b)
	return b, err
}

func (c *Client) MoveResource(ctx context.Context, id uuid.UUID, dst string) error {
	return c.do(ctx, http.MethodPost, []string{"resources", id.String(), "move"}, nil, map[string]string{"path": dst}, nil)
}

func (c *Client) LockResource(ctx context.Context, id uuid.UUID, lockType models_vfs.LockType) error {
	return c.do(ctx, http.MethodPut, []string{"resources", id.String(), "lock"}, nil, map[string]models_vfs.LockType{"type": lockType}, nil)
}

func (c *Client) UnlockResource(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, []string{"resources", id.String(), "lock"}, nil, nil, nil)
}

type importRequest struct {
	Path       string                `json:"path"`
	Attributes models_vfs.Resource   `json:"attributes"`
	Content    []byte                `json:"content,omitempty"`
	Properties []models_vfs.Property `json:"properties,omitempty"`
}

func (c *Client) ImportResource(ctx context.Context, path string, attributes models_vfs.Resource, content io.Reader, properties []models_vfs.Property) (models_vfs.Resource, error) {
	req := importRequest{
		Path:       path,
		Attributes: attributes,
		Properties: properties,
	}
	if content != nil {
		b, err := io.ReadAll(content)
		if err != nil {
			return models_vfs.Resource{}, err
		}
		req.Content = b
	}
	var res models_vfs.Resource
	err := c.do(ctx, http.MethodPost, []string{"resources"}, nil, req, &res)
	return res, err
}

func (c *Client) DeleteResource(ctx context.Context, id uuid.UUID, preserveSiblings bool) error {
	return c.do(ctx, http.MethodDelete, []string{"resources", id.String()}, url.Values{"preserve_siblings": {strconv.FormatBool(preserveSiblings)}}, nil, nil)
}

func (c *Client) ReadProperties(ctx context.Context, id uuid.UUID) ([]models_vfs.Property, error) {
	var properties []models_vfs.Property
	err := c.do(ctx, http.MethodGet, []string{"resources", id.String(), "properties"}, nil, nil, &properties)
	return properties, err
}

func (c *Client) WriteProperties(ctx context.Context, id uuid.UUID, properties []models_vfs.Property) error {
	return c.do(ctx, http.MethodPatch, []string{"resources", id.String(), "properties"}, nil, properties, nil)
}

func (c *Client) ReadAccessControlEntries(ctx context.Context, id uuid.UUID) ([]models_vfs.AccessControlEntry, error) {
	var entries []models_vfs.AccessControlEntry
	err := c.do(ctx, http.MethodGet, []string{"resources", id.String(), "acl"}, nil, nil, &entries)
	return entries, err
}

func (c *Client) GrantAccessControlEntry(ctx context.Context, id uuid.UUID, ace models_vfs.AccessControlEntry) error {
	return c.do(ctx, http.MethodPost, []string{"resources", id.String(), "acl"}, nil, ace, nil)
}

func (c *Client) RevokeAccessControlEntry(ctx context.Context, id uuid.UUID, principalID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, []string{"resources", id.String(), "acl", principalID.String()}, nil, nil, nil)
}

func (c *Client) ReadRelations(ctx context.Context, id uuid.UUID) ([]models_vfs.Relation, error) {
	var relations []models_vfs.Relation
	err := c.do(ctx, http.MethodGet, []string{"resources", id.String(), "relations"}, nil, nil, &relations)
	return relations, err
}

func (c *Client) AddRelation(ctx context.Context, id uuid.UUID, relation models_vfs.Relation) error {
	return c.do(ctx, http.MethodPost, []string{"resources", id.String(), "relations"}, nil, relation, nil)
}

func (c *Client) DeleteRelations(ctx context.Context, id uuid.UUID, includeContentDefined bool) error {
	return c.do(ctx, http.MethodDelete, []string{"resources", id.String(), "relations"}, url.Values{"include_content_defined": {strconv.FormatBool(includeContentDefined)}}, nil, nil)
}

func (c *Client) ParseLinks(ctx context.Context, ids []uuid.UUID) error {
	return c.do(ctx, http.MethodPost, []string{"links", "parse"}, nil, ids, nil)
}

func (c *Client) ResourceType(ctx context.Context, id int) (models_vfs.ResourceType, error) {
	var resType models_vfs.ResourceType
	err := c.do(ctx, http.MethodGet, []string{"resource_types", strconv.Itoa(id)}, nil, nil, &resType)
	return resType, err
}

func (c *Client) ReinitializeTypes(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, []string{"resource_types", "reinitialize"}, nil, nil, nil)
}

func (c *Client) CreateProject(ctx context.Context, name string) (models_vfs.Project, error) {
	var project models_vfs.Project
	err := c.do(ctx, http.MethodPost, []string{"projects"}, nil, map[string]string{"name": name}, &project)
	return project, err
}

// CopyToProject adds all resources below path to the project selected by ctx.
func (c *Client) CopyToProject(ctx context.Context, path string) error {
	id, ok := models_vfs.ProjectFromContext(ctx)
	if !ok {
		return fmt.Errorf("no project selected: %w", models_error.NotFoundErr)
	}
	return c.do(ctx, http.MethodPost, []string{"projects", id.String(), "resources"}, nil, map[string]string{"path": path}, nil)
}

type publishStatus struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

// PublishProject starts publishing the project and blocks until the backend completed it.
func (c *Client) PublishProject(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodPost, []string{"projects", id.String(), "publish"}, nil, nil, nil); err != nil {
		return err
	}
	expBackoff := backoff.NewExponentialBackOff()
	if c.config.PublishPollInterval > 0 {
		expBackoff.InitialInterval = c.config.PublishPollInterval
	}
	expBackoff.MaxElapsedTime = c.config.PublishMaxWait
	expBackoff.Reset()
	var publishErr error
	err := backoff.Retry(func() error {
		var status publishStatus
		if err := c.do(ctx, http.MethodGet, []string{"projects", id.String(), "publish"}, nil, nil, &status); err != nil {
			if errors.Is(err, models_error.NotFoundErr) {
				return nil
			}
			return err
		}
		if status.Running {
			return errors.New("publish running")
		}
		if status.Error != "" {
			publishErr = errors.New(status.Error)
		}
		return nil
	}, backoff.WithContext(expBackoff, ctx))
	if err != nil {
		return fmt.Errorf("awaiting publish failed: %w", err)
	}
	if publishErr != nil {
		return fmt.Errorf("publish failed: %w", publishErr)
	}
	return nil
}

// DeleteProject discards an unpublished project.
func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, []string{"projects", id.String()}, nil, nil, nil)
}

func (c *Client) PauseIndexing(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, []string{"search", "pause"}, nil, nil, nil)
}

func (c *Client) ResumeIndexing(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, []string{"search", "resume"}, nil, nil, nil)
}

// BreakerTripped reports whether the circuit breaker is open.
func (c *Client) BreakerTripped() bool {
	return c.breaker.Tripped()
}

func (c *Client) do(ctx context.Context, method string, elems []string, query url.Values, in, out any) error {
	if !c.breaker.Ready() {
		return ErrBackendDown
	}
	u, err := url.JoinPath(c.baseURL, elems...)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	var resErr error
	err = c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			resErr = err
			return nil
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if id, ok := models_vfs.ProjectFromContext(ctx); ok {
			req.Header.Set(projectHeaderKey, id.String())
		}
		res, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= 400 {
			b, _ := io.ReadAll(res.Body)
			msg := string(b)
			if len(b) == 0 {
				msg = res.Status
			}
			if res.StatusCode >= 500 {
				return NewResponseError(res.StatusCode, msg)
			}
			resErr = NewResponseError(res.StatusCode, msg)
			return nil
		}
		resErr = decode(res.Body, out)
		return nil
	}, 0)
	if err != nil {
		if errors.Is(err, circuit.ErrBreakerOpen) {
			return ErrBackendDown
		}
		return err
	}
	return resErr
}

func decode(r io.Reader, out any) error {
	switch v := out.(type) {
	case nil:
		_, err := io.Copy(io.Discard, r)
		return err
	case *[]byte:
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		*v = b
		return nil
	default:
		return json.NewDecoder(r).Decode(out)
	}
}

func found(res models_vfs.Resource, err error) (models_vfs.Resource, bool, error) {
	if err != nil {
		if errors.Is(err, models_error.NotFoundErr) {
			return models_vfs.Resource{}, false, nil
		}
		return models_vfs.Resource{}, false, err
	}
	return res, true, nil
}
