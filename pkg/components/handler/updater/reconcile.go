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
	"context"

	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
)

// reconcileProperties writes staged properties that are missing or differ. Properties absent
// from the staged entry are cleared by writing an empty value.
func reconcileProperties(ctx context.Context, vfs vfsStore, id uuid.UUID, staged []models_vfs.Property) (bool, error) {
	existing, err := vfs.ReadProperties(ctx, id)
	if err != nil {
		return false, err
	}
	existingMap := make(map[string]string, len(existing))
	for _, p := range existing {
		existingMap[p.Name] = p.Value
	}
	stagedMap := make(map[string]string, len(staged))
	var writes []models_vfs.Property
	for _, p := range staged {
		stagedMap[p.Name] = p.Value
		if v, ok := existingMap[p.Name]; !ok || v != p.Value {
			writes = append(writes, p)
		}
	}
	for _, p := range existing {
		if _, ok := stagedMap[p.Name]; !ok && p.Value != "" {
			writes = append(writes, models_vfs.Property{Name: p.Name})
		}
	}
	if len(writes) == 0 {
		return false, nil
	}
	return true, vfs.WriteProperties(ctx, id, writes)
}

// reconcileAccessControl replaces changed entries per principal by revoking and granting anew.
func reconcileAccessControl(ctx context.Context, vfs vfsStore, id uuid.UUID, staged []models_vfs.AccessControlEntry) (bool, error) {
	existing, err := vfs.ReadAccessControlEntries(ctx, id)
	if err != nil {
		return false, err
	}
	existingMap := make(map[uuid.UUID]models_vfs.AccessControlEntry, len(existing))
	for _, ace := range existing {
		existingMap[ace.PrincipalID] = ace
	}
	stagedMap := make(map[uuid.UUID]struct{}, len(staged))
	for _, ace := range staged {
		stagedMap[ace.PrincipalID] = struct{}{}
	}
	var changed bool
	for _, ace := range existing {
		if _, ok := stagedMap[ace.PrincipalID]; !ok {
			if err = vfs.RevokeAccessControlEntry(ctx, id, ace.PrincipalID); err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, ace := range staged {
		e, ok := existingMap[ace.PrincipalID]
		if ok && e == ace {
			continue
		}
		if ok {
			if err = vfs.RevokeAccessControlEntry(ctx, id, ace.PrincipalID); err != nil {
				return changed, err
			}
		}
		if err = vfs.GrantAccessControlEntry(ctx, id, ace); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// reconcileRelations replaces all relations not defined in content if they differ from the
// staged ones. Relations defined in content are left to link parsing.
func reconcileRelations(ctx context.Context, vfs vfsStore, id uuid.UUID, staged []models_vfs.Relation) (bool, error) {
	existing, err := vfs.ReadRelations(ctx, id)
	if err != nil {
		return false, err
	}
	type relKey struct {
		path string
		typ  string
	}
	existingSet := make(map[relKey]int)
	for _, rel := range existing {
		if !rel.DefinedInContent {
			existingSet[relKey{rel.TargetPath, rel.Type}]++
		}
	}
	stagedSet := make(map[relKey]int)
	for _, rel := range staged {
		stagedSet[relKey{rel.TargetPath, rel.Type}]++
	}
	if len(existingSet) == len(stagedSet) {
		equal := true
		for k, n := range stagedSet {
			if existingSet[k] != n {
				equal = false
				break
			}
		}
		if equal {
			return false, nil
		}
	}
	if err = vfs.DeleteRelations(ctx, id, false); err != nil {
		return false, err
	}
	for _, rel := range staged {
		rel.DefinedInContent = false
		if err = vfs.AddRelation(ctx, id, rel); err != nil {
			return true, err
		}
	}
	return true, nil
}
