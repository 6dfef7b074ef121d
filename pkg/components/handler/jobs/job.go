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
	"sync"

	helper_report "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/report"
	helper_time "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/time"
	models_job "github.com/SENERGY-Platform/cms-module-manager/pkg/models/job"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
)

type job struct {
	mu     sync.RWMutex
	meta   models_job.Job
	tFunc  Func
	report *helper_report.Report
	ctx    context.Context
	cFunc  context.CancelFunc
}

// CallTarget runs the job's target and calls cbk afterwards. Jobs canceled while
// pending are skipped.
func (j *job) CallTarget(cbk func()) {
	defer cbk()
	if j.ctx.Err() != nil {
		return
	}
	logger.Debug("job started", slog_attr.JobIDKey, j.meta.ID)
	j.mu.Lock()
	t := helper_time.Now()
	j.meta.Started = &t
	j.mu.Unlock()
	err := j.tFunc(j.ctx, j.report)
	j.mu.Lock()
	if err != nil {
		j.meta.Error = err.Error()
	}
	t2 := helper_time.Now()
	j.meta.Completed = &t2
	j.mu.Unlock()
	j.cFunc()
	logger.Debug("job completed", slog_attr.JobIDKey, j.meta.ID)
}

func (j *job) isCanceled() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.meta.Canceled != nil
}

func (j *job) cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.meta.Completed != nil || j.meta.Canceled != nil {
		return
	}
	j.cFunc()
	t := helper_time.Now()
	j.meta.Canceled = &t
}

func (j *job) Meta() models_job.Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	meta := j.meta
	meta.Report = j.report.Lines()
	return meta
}
