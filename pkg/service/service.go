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
	"fmt"
)

type Service struct {
	registryHdl RegistryHandler
	reader      ImportReader
	jobsHdl     JobsHandler
	checkers    []HealthChecker
}

func New(registryHdl RegistryHandler, reader ImportReader, jobsHdl JobsHandler, checkers ...HealthChecker) *Service {
	return &Service{
		registryHdl: registryHdl,
		reader:      reader,
		jobsHdl:     jobsHdl,
		checkers:    checkers,
	}
}

// Health returns an error if a backing store is unavailable.
func (s *Service) Health(ctx context.Context) error {
	for _, checker := range s.checkers {
		if err := checker.Ping(ctx); err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
	}
	return nil
}
