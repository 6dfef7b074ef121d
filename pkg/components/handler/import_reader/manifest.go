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

package import_reader

import "time"

type manifest struct {
	Info   manifestInfo   `yaml:"info"`
	Module manifestModule `yaml:"module"`
	Files  []manifestFile `yaml:"files"`
}

type manifestInfo struct {
	ExportVersion string `yaml:"export_version"`
	Creator       string `yaml:"creator"`
}

type manifestAuthor struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type manifestDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type manifestExportPoint struct {
	URI         string `yaml:"uri"`
	Destination string `yaml:"destination"`
}

type manifestResourceType struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
}

type manifestExplorerType struct {
	Name      string `yaml:"name"`
	Reference string `yaml:"reference"`
}

type manifestModule struct {
	Name             string                 `yaml:"name"`
	NiceName         string                 `yaml:"nice_name"`
	Group            string                 `yaml:"group"`
	ActionClass      string                 `yaml:"action_class"`
	ImportScript     string                 `yaml:"import_script"`
	Description      string                 `yaml:"description"`
	Version          string                 `yaml:"version"`
	Author           manifestAuthor         `yaml:"author"`
	DateCreated      *time.Time             `yaml:"date_created"`
	UserInstalled    string                 `yaml:"user_installed"`
	DateInstalled    *time.Time             `yaml:"date_installed"`
	Dependencies     []manifestDependency   `yaml:"dependencies"`
	ExportPoints     []manifestExportPoint  `yaml:"export_points"`
	Resources        []string               `yaml:"resources"`
	ExcludeResources []string               `yaml:"exclude_resources"`
	Parameters       map[string]string      `yaml:"parameters"`
	ResourceTypes    []manifestResourceType `yaml:"resource_types"`
	ExplorerTypes    []manifestExplorerType `yaml:"explorer_types"`
	Site             string                 `yaml:"site"`
}

type manifestProperty struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type manifestAccessControlEntry struct {
	PrincipalID string `yaml:"principal_id"`
	Allowed     int    `yaml:"allowed"`
	Denied      int    `yaml:"denied"`
	Flags       int    `yaml:"flags"`
}

type manifestRelation struct {
	TargetID   string `yaml:"target_id"`
	TargetPath string `yaml:"target_path"`
	Type       string `yaml:"type"`
}

type manifestFile struct {
	Destination      string                       `yaml:"destination"`
	Source           string                       `yaml:"source"`
	Type             int                          `yaml:"type"`
	Folder           bool                         `yaml:"folder"`
	StructureID      string                       `yaml:"structure_id"`
	ResourceID       string                       `yaml:"resource_id"`
	Flags            int                          `yaml:"flags"`
	DateCreated      *time.Time                   `yaml:"date_created"`
	UserCreated      string                       `yaml:"user_created"`
	DateLastModified *time.Time                   `yaml:"date_last_modified"`
	UserLastModified string                       `yaml:"user_last_modified"`
	DateReleased     *time.Time                   `yaml:"date_released"`
	DateExpired      *time.Time                   `yaml:"date_expired"`
	Properties       []manifestProperty           `yaml:"properties"`
	AccessControl    []manifestAccessControlEntry `yaml:"access_control"`
	Relations        []manifestRelation           `yaml:"relations"`
}
