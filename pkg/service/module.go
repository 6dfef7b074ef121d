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
	"errors"
	"fmt"

	handler_registry "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/registry"
	helper_report "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/report"
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
)

func (s *Service) Modules(_ context.Context) ([]models_module.Module, error) {
	return s.registryHdl.Modules(), nil
}

func (s *Service) Module(_ context.Context, name string) (models_module.Module, error) {
	return s.registryHdl.Module(name)
}

// ModuleDependencies returns the names of the modules name depends on, or of the modules
// depending on name if forward is true.
func (s *Service) ModuleDependencies(_ context.Context, name string, forward bool) ([]string, error) {
	if _, err := s.registryHdl.Module(name); err != nil {
		return nil, err
	}
	deps := s.registryHdl.DependencyMap(forward)[name]
	if deps == nil {
		deps = []string{}
	}
	return deps, nil
}

func (s *Service) ExportPoints(_ context.Context) ([]models_module.ExportPoint, error) {
	return s.registryHdl.ExportPoints(), nil
}

func (s *Service) ImportOrder(ctx context.Context, dir string) ([]string, error) {
	if dir == "" {
		return nil, models_error.NewValidationError(errors.New("missing directory"))
	}
	return s.registryHdl.ImportOrder(ctx, dir)
}

// ImportModule starts a job importing the package at pkgPath and returns the job id.
func (s *Service) ImportModule(_ context.Context, pkgPath string) (string, error) {
	if pkgPath == "" {
		return "", models_error.NewValidationError(errors.New("missing package path"))
	}
	return s.jobsHdl.Create(fmt.Sprintf("import module package '%s'", pkgPath), func(ctx context.Context, rep *helper_report.Report) error {
		return s.registryHdl.ImportModule(ctx, pkgPath, rep)
	})
}

// ReplaceModule starts a job replacing the installed module name with the module contained
// in the package at pkgPath.
func (s *Service) ReplaceModule(ctx context.Context, name, pkgPath string) (string, error) {
	if pkgPath == "" {
		return "", models_error.NewValidationError(errors.New("missing package path"))
	}
	mod, err := s.reader.ReadModule(ctx, pkgPath)
	if err != nil {
		return "", err
	}
	if mod.Name() != name {
		return "", models_error.NewValidationError(fmt.Errorf("package contains module '%s'", mod.Name()))
	}
	return s.jobsHdl.Create(fmt.Sprintf("replace module '%s'", name), func(ctx context.Context, rep *helper_report.Report) error {
		return s.registryHdl.Replace(ctx, pkgPath, rep)
	})
}

// DeleteModule starts a job deleting the installed module name.
func (s *Service) DeleteModule(_ context.Context, name string, preserveLibs bool) (string, error) {
	mod, err := s.registryHdl.Module(name)
	if err != nil {
		return "", err
	}
	if dependents := s.registryHdl.CheckDependencies(mod, handler_registry.DeleteMode); len(dependents) > 0 {
		return "", models_error.NewDependencyError(name, "is required by", dependents)
	}
	logger.Debug("deleting module", slog_attr.NameKey, name)
	return s.jobsHdl.Create(fmt.Sprintf("delete module '%s'", name), func(ctx context.Context, rep *helper_report.Report) error {
		return s.registryHdl.Delete(ctx, name, preserveLibs, rep)
	})
}
