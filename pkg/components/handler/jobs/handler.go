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

package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	helper_report "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/report"
	helper_time "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/time"
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/cms-module-manager/pkg/models/job"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	"github.com/google/uuid"
)

// Func is the target of a job. Progress is written to the report.
type Func func(ctx context.Context, rep *helper_report.Report) error

// Handler keeps job metadata and reports until purged. Jobs are executed by the
// ccjh handler passed to New.
type Handler struct {
	mu        sync.RWMutex
	ctx       context.Context
	cFunc     context.CancelFunc
	config    Config
	ccHandler *ccjh.Handler
	jobs      map[string]*job
}

func New(ctx context.Context, ccHandler *ccjh.Handler, config Config) *Handler {
	ctx, cf := context.WithCancel(ctx)
	return &Handler{
		ctx:       ctx,
		cFunc:     cf,
		config:    config,
		ccHandler: ccHandler,
		jobs:      make(map[string]*job),
	}
}

func (h *Handler) Create(desc string, tFunc Func) (string, error) {
	if err := h.ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	ctx, cf := context.WithCancel(h.ctx)
	j := &job{
		meta: models_job.Job{
			ID:          id,
			Created:     helper_time.Now(),
			Description: desc,
		},
		tFunc:  tFunc,
		report: helper_report.New(logger.With(slog_attr.JobIDKey, id)),
		ctx:    ctx,
		cFunc:  cf,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ccHandler.Add(j); err != nil {
		cf()
		return "", fmt.Errorf("queue job %s: %w", id, err)
	}
	h.jobs[id] = j
	logger.Debug("job queued", slog_attr.JobIDKey, id)
	return id, nil
}

func (h *Handler) Get(id string) (models_job.Job, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	j, ok := h.jobs[id]
	if !ok {
		return models_job.Job{}, fmt.Errorf("job %s: %w", id, models_error.NotFoundErr)
	}
	return j.Meta(), nil
}

func (h *Handler) Cancel(id string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	j, ok := h.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, models_error.NotFoundErr)
	}
	j.cancel()
	return nil
}

func (h *Handler) List(filter models_job.Filter) []models_job.Job {
	var jobs []models_job.Job
	h.mu.RLock()
	for _, v := range h.jobs {
		meta := v.Meta()
		if check(filter, meta) {
			jobs = append(jobs, meta)
		}
	}
	h.mu.RUnlock()
	slices.SortFunc(jobs, func(a, b models_job.Job) int {
		if filter.SortDesc {
			return b.Created.Compare(a.Created)
		}
		return a.Created.Compare(b.Created)
	})
	return jobs
}

// PurgeJobs removes finished jobs older than maxAge and returns their number.
func (h *Handler) PurgeJobs(maxAge time.Duration) int {
	var l []string
	tNow := helper_time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()
	for k, v := range h.jobs {
		m := v.Meta()
		if v.isCanceled() || m.Completed != nil {
			if tNow.Sub(m.Created) >= maxAge {
				l = append(l, k)
			}
		}
	}
	for _, id := range l {
		delete(h.jobs, id)
	}
	return len(l)
}

// RunPurge periodically purges finished jobs until ctx is done.
func (h *Handler) RunPurge(ctx context.Context) {
	if h.config.PurgeInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.config.PurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.PurgeJobs(h.config.MaxAge); n > 0 {
				logger.Debug("purged jobs", slog_attr.CountKey, n)
			}
		}
	}
}

// Stop stops the ccjh handler, cancels all jobs and blocks until no job is active or ctx is done.
func (h *Handler) Stop(ctx context.Context) error {
	h.ccHandler.Stop()
	h.cFunc()
	if h.ccHandler.Active() == 0 {
		return nil
	}
	logger.Info("waiting for active jobs to cancel")
	ticker := time.NewTicker(time.Millisecond * 50)
	defer ticker.Stop()
	for h.ccHandler.Active() != 0 {
		select {
		case <-ctx.Done():
			return errors.New("canceling jobs took too long")
		case <-ticker.C:
		}
	}
	logger.Info("jobs canceled")
	return nil
}

func check(filter models_job.Filter, job models_job.Job) bool {
	if !filter.Since.IsZero() && !job.Created.After(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && !job.Created.Before(filter.Until) {
		return false
	}
	switch filter.Status {
	case models_job.Pending:
		if job.Started != nil || job.Canceled != nil || job.Completed != nil {
			return false
		}
	case models_job.Running:
		if job.Started == nil || job.Canceled != nil || job.Completed != nil {
			return false
		}
	case models_job.Canceled:
		if job.Canceled == nil {
			return false
		}
	case models_job.Completed:
		if job.Completed == nil {
			return false
		}
	case models_job.Error:
		if job.Completed == nil || job.Error == nil {
			return false
		}
	case models_job.OK:
		if job.Completed == nil || job.Error != nil {
			return false
		}
	}
	return true
}
