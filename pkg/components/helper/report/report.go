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

package report

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
)

const (
	prefixOK     = "ok"
	prefixSkip   = "skip"
	prefixDelete = "delete"
	prefixWarn   = "warn"
	prefixError  = "error"
)

// Report collects progress lines of a long running operation and mirrors them to a logger.
type Report struct {
	logger   *slog.Logger
	lines    []string
	warnings int
	errors   int
	mu       sync.RWMutex
}

func New(logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.Default()
	}
	return &Report{logger: logger}
}

func (r *Report) Headline(msg string) {
	r.append("=== " + msg + " ===")
	r.logger.Info(msg)
}

func (r *Report) Print(msg string) {
	r.append(msg)
	r.logger.Debug(msg)
}

func (r *Report) OK(path string) {
	r.append(prefixOK + ": " + path)
	r.logger.Debug("resource ok", slog_attr.ResourcePathKey, path)
}

func (r *Report) Skip(path string) {
	r.append(prefixSkip + ": " + path)
	r.logger.Debug("resource skipped", slog_attr.ResourcePathKey, path)
}

func (r *Report) Delete(path string) {
	r.append(prefixDelete + ": " + path)
	r.logger.Debug("resource deleted", slog_attr.ResourcePathKey, path)
}

func (r *Report) Warn(path string, err error) {
	r.mu.Lock()
	r.warnings++
	r.mu.Unlock()
	r.append(fmt.Sprintf("%s: %s: %s", prefixWarn, path, err))
	r.logger.Warn("resource failed", slog_attr.ResourcePathKey, path, slog_attr.ErrorKey, err)
}

func (r *Report) Error(err error) {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
	r.append(prefixError + ": " + err.Error())
	r.logger.Error("operation failed", slog_attr.ErrorKey, err)
}

func (r *Report) Lines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.lines)
}

func (r *Report) Warnings() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.warnings
}

func (r *Report) Errors() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errors
}

func (r *Report) append(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}
