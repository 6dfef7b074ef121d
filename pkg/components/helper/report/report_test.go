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
	"errors"
	"reflect"
	"testing"
)

func TestReport(t *testing.T) {
	r := New(nil)
	r.Headline("updating module")
	r.OK("/a")
	r.Skip("/b")
	r.Delete("/c")
	r.Warn("/d", errors.New("test"))
	r.Error(errors.New("fatal"))
	a := []string{
		"=== updating module ===",
		"ok: /a",
		"skip: /b",
		"delete: /c",
		"warn: /d: test",
		"error: fatal",
	}
	if !reflect.DeepEqual(a, r.Lines()) {
		t.Errorf("expected %v, got %v", a, r.Lines())
	}
	if r.Warnings() != 1 || r.Errors() != 1 {
		t.Error("wrong counters")
	}
}
