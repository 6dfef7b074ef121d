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

package service

import (
	"context"

	handler_jobs "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/jobs"
	handler_registry "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/registry"
	handler_updater "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/updater"
	models_job "github.com/SENERGY-Platform/cms-module-manager/pkg/models/job"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
)

type RegistryHandler interface {
	Modules() []models_module.Module
	Module(name string) (models_module.Module, error)
	ExportPoints() []models_module.ExportPoint
	DependencyMap(forward bool) map[string][]string
	CheckDependencies(mod models_module.Module, mode handler_registry.DependencyMode) []string
	ImportModule(ctx context.Context, pkgPath string, rep handler_updater.ReportSink) error
	Replace(ctx context.Context, pkgPath string, rep handler_updater.ReportSink) error
	Delete(ctx context.Context, name string, preserveLibs bool, rep handler_updater.ReportSink) error
	ImportOrder(ctx context.Context, dir string) ([]string, error)
}

type ImportReader interface {
	ReadModule(ctx context.Context, pkgPath string) (models_module.Module, error)
}

type JobsHandler interface {
	Create(desc string, tFunc handler_jobs.Func) (string, error)
	Get(id string) (models_job.Job, error)
	Cancel(id string) error
	List(filter models_job.Filter) []models_job.Job
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}
