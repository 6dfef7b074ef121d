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
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestProjectFromContext(t *testing.T) {
	id := uuid.New()
	ctx := ContextWithProject(context.Background(), id)
	a, ok := ProjectFromContext(ctx)
	if !ok {
		t.Fatal("project not in context")
	}
	if a != id {
		t.Errorf("expected %s, got %s", id, a)
	}
	if _, ok = ProjectFromContext(context.Background()); ok {
		t.Error("expected no project")
	}
}
