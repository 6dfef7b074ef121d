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

package updater

import (
	"time"

	models_import "github.com/SENERGY-Platform/cms-module-manager/pkg/models/import_data"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
)

// dateTolerance absorbs rounding of exported timestamps.
const dateTolerance = time.Second

// NeedToUpdateResourceFields reports whether the attributes of an existing resource differ from
// a staged entry. Modification dates and user fields are ignored for reduced entries.
func NeedToUpdateResourceFields(existing models_vfs.Resource, entry *models_import.ResourceEntry, reduced bool) bool {
	a := entry.Attributes
	if existing.TypeID != a.TypeID || existing.Flags != a.Flags {
		return true
	}
	if datesDiffer(existing.DateCreated, a.DateCreated) ||
		datesDiffer(existing.DateReleased, a.DateReleased) ||
		datesDiffer(existing.DateExpired, a.DateExpired) {
		return true
	}
	if reduced {
		return false
	}
	return datesDiffer(existing.DateLastModified, a.DateLastModified) ||
		existing.UserCreated != a.UserCreated ||
		existing.UserLastModified != a.UserLastModified
}

func datesDiffer(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d > dateTolerance
}
