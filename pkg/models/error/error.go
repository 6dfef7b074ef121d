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

package error

import (
	"errors"
	"fmt"
	"strings"
)

var (
	NotFoundErr     = errors.New("not found")
	DuplicateErr    = errors.New("duplicate")
	OverflowErr     = errors.New("arithmetic overflow")
	NotUpdatableErr = errors.New("not updatable")
	LockedErr       = errors.New("locked")
)

type MultiError struct {
	errs []error
}

func NewMultiError(errs []error) *MultiError {
	return &MultiError{errs: errs}
}

func (e *MultiError) Error() string {
	var str string
	errsLen := len(e.errs)
	for i, err := range e.errs {
		str += err.Error()
		if i < errsLen-1 {
			str += "\n"
		}
	}
	return str
}

func (e *MultiError) Errors() []error {
	return e.errs
}

func (e *MultiError) Unwrap() []error {
	return e.errs
}

type ValidationError struct {
	err error
}

func NewValidationError(err error) *ValidationError {
	return &ValidationError{err: err}
}

func (e *ValidationError) Error() string {
	return e.err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// DependencyError lists every dependency involved in a failed dependency check.
type DependencyError struct {
	Module       string
	Dependencies []string
	reason       string
}

func NewDependencyError(module, reason string, dependencies []string) *DependencyError {
	return &DependencyError{
		Module:       module,
		Dependencies: dependencies,
		reason:       reason,
	}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("module '%s' %s: %s", e.Module, e.reason, strings.Join(e.Dependencies, ", "))
}

type CycleError struct {
	Modules []string
}

func NewCycleError(modules []string) *CycleError {
	return &CycleError{Modules: modules}
}

func (e *CycleError) Error() string {
	return "dependency cycle between modules: " + strings.Join(e.Modules, ", ")
}

type ConflictError struct {
	err error
}

func NewConflictError(err error) *ConflictError {
	return &ConflictError{err: err}
}

func (e *ConflictError) Error() string {
	return e.err.Error()
}

func (e *ConflictError) Unwrap() error {
	return e.err
}

// LockError names all resources whose locks could not be acquired.
type LockError struct {
	Paths []string
}

func NewLockError(paths []string) *LockError {
	return &LockError{Paths: paths}
}

func (e *LockError) Error() string {
	return "unable to lock resources: " + strings.Join(e.Paths, ", ")
}

type ParseError struct {
	Source string
	err    error
}

func NewParseError(source string, err error) *ParseError {
	return &ParseError{
		Source: source,
		err:    err,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing '%s' failed: %s", e.Source, e.err)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

type ResourceError struct {
	Path string
	err  error
}

func NewResourceError(path string, err error) *ResourceError {
	return &ResourceError{
		Path: path,
		err:  err,
	}
}

func (e *ResourceError) Error() string {
	return e.Path + ": " + e.err.Error()
}

func (e *ResourceError) Unwrap() error {
	return e.err
}
