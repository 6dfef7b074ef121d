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
	"errors"
	"net/http"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
)

type invalidInputError struct {
	err error
}

func newInvalidInputError(err error) *invalidInputError {
	return &invalidInputError{err: err}
}

func (e *invalidInputError) Error() string {
	return e.err.Error()
}

func (e *invalidInputError) Unwrap() error {
	return e.err
}

func getStatusCode(err error) int {
	var iie *invalidInputError
	if errors.As(err, &iie) {
		return http.StatusBadRequest
	}
	if errors.Is(err, models_error.NotFoundErr) {
		return http.StatusNotFound
	}
	var lockErr *models_error.LockError
	if errors.As(err, &lockErr) || errors.Is(err, models_error.LockedErr) {
		return http.StatusLocked
	}
	var valErr *models_error.ValidationError
	var parseErr *models_error.ParseError
	if errors.As(err, &valErr) || errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}
	var depErr *models_error.DependencyError
	var cycleErr *models_error.CycleError
	var conflictErr *models_error.ConflictError
	if errors.Is(err, models_error.DuplicateErr) || errors.As(err, &depErr) || errors.As(err, &cycleErr) || errors.As(err, &conflictErr) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
