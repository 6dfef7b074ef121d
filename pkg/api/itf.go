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

	models_job "github.com/SENERGY-Platform/cms-module-manager/pkg/models/job"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
)

type serviceItf interface {
	Modules(ctx context.Context) ([]models_module.Module, error)
	Module(ctx context.Context, name string) (models_module.Module, error)
	ModuleDependencies(ctx context.Context, name string, forward bool) ([]string, error)
	ExportPoints(ctx context.Context) ([]models_module.ExportPoint, error)
	ImportOrder(ctx context.Context, dir string) ([]string, error)
	ImportModule(ctx context.Context, pkgPath string) (string, error)
	ReplaceModule(ctx context.Context, name, pkgPath string) (string, error)
	DeleteModule(ctx context.Context, name string, preserveLibs bool) (string, error)
	Jobs(ctx context.Context, filter models_job.Filter) ([]models_job.Job, error)
	Job(ctx context.Context, id string) (models_job.Job, error)
	CancelJob(ctx context.Context, id string) error
	Health(ctx context.Context) error
}

type infoHandler interface {
	ServiceInfo() srv_info_hdl.ServiceInfo
	Version() string
	Name() string
}
