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
	"fmt"
	"net/http"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
)

type ResponseError struct {
	Code int
	Msg  string
}

func NewResponseError(code int, msg string) *ResponseError {
	return &ResponseError{Code: code, Msg: msg}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Msg)
}

func (e *ResponseError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return models_error.NotFoundErr
	case http.StatusConflict:
		return models_error.DuplicateErr
	case http.StatusLocked:
		return models_error.LockedErr
	}
	return nil
}
