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

package module

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
)

const SystemFolder = "/system/"

var nameRegExp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*(\.[A-Za-z_][A-Za-z0-9_\-]*)*$`)

func IsValidName(name string) bool {
	return nameRegExp.MatchString(name)
}

type ExportPoint struct {
	URI         string `json:"uri" yaml:"uri"`
	Destination string `json:"destination" yaml:"destination"`
}

type ResourceType struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Class string `json:"class" yaml:"class"`
}

type ExplorerType struct {
	Name      string `json:"name" yaml:"name"`
	Reference string `json:"reference" yaml:"reference"`
}

// Module describes one installed or staged module. Values are immutable, use From to
// derive a changed copy.
type Module struct {
	name             string
	niceName         string
	group            string
	actionClass      string
	importScript     string
	description      string
	version          Version
	authorName       string
	authorEmail      string
	dateCreated      time.Time
	userInstalled    string
	dateInstalled    time.Time
	checkpointTime   time.Time
	dependencies     []Dependency
	exportPoints     []ExportPoint
	resources        []string
	excludeResources []string
	parameters       map[string]string
	resourceTypes    []ResourceType
	explorerTypes    []ExplorerType
	site             string
	exportVersion    string
}

func (m Module) Name() string {
	return m.name
}

func (m Module) NiceName() string {
	return m.niceName
}

func (m Module) Group() string {
	return m.group
}

// ActionClass is the key of the action hook registered for this module.
func (m Module) ActionClass() string {
	return m.actionClass
}

func (m Module) ImportScript() string {
	return m.importScript
}

func (m Module) Description() string {
	return m.description
}

func (m Module) Version() Version {
	return m.version
}

func (m Module) AuthorName() string {
	return m.authorName
}

func (m Module) AuthorEmail() string {
	return m.authorEmail
}

func (m Module) DateCreated() time.Time {
	return m.dateCreated
}

func (m Module) UserInstalled() string {
	return m.userInstalled
}

func (m Module) DateInstalled() time.Time {
	return m.dateInstalled
}

func (m Module) CheckpointTime() time.Time {
	return m.checkpointTime
}

func (m Module) Dependencies() []Dependency {
	return slices.Clone(m.dependencies)
}

func (m Module) ExportPoints() []ExportPoint {
	return slices.Clone(m.exportPoints)
}

func (m Module) Resources() []string {
	return slices.Clone(m.resources)
}

func (m Module) ExcludeResources() []string {
	return slices.Clone(m.excludeResources)
}

func (m Module) Parameters() map[string]string {
	return maps.Clone(m.parameters)
}

func (m Module) Parameter(key string) (string, bool) {
	v, ok := m.parameters[key]
	return v, ok
}

func (m Module) ParameterKeys() []string {
	return slices.Sorted(maps.Keys(m.parameters))
}

func (m Module) ResourceTypes() []ResourceType {
	return slices.Clone(m.resourceTypes)
}

func (m Module) ExplorerTypes() []ExplorerType {
	return slices.Clone(m.explorerTypes)
}

func (m Module) HasResourceTypes() bool {
	return len(m.resourceTypes) > 0 || len(m.explorerTypes) > 0
}

func (m Module) Site() string {
	return m.site
}

func (m Module) ExportVersion() string {
	return m.exportVersion
}

// IncludesPath reports whether path lies inside one of the module resources and
// outside of every excluded resource.
func (m Module) IncludesPath(path string) bool {
	for _, exclude := range m.excludeResources {
		if isInFolder(exclude, path) {
			return false
		}
	}
	for _, resource := range m.resources {
		if isInFolder(resource, path) {
			return true
		}
	}
	return false
}

// OnlySystemResources reports whether all module resources are below the shared system folder.
func (m Module) OnlySystemResources() bool {
	for _, resource := range m.resources {
		if !strings.HasPrefix(resource, SystemFolder) {
			return false
		}
	}
	return true
}

func (m Module) String() string {
	return m.name + " (" + m.version.String() + ")"
}

func isInFolder(folder, path string) bool {
	folder = strings.TrimSuffix(folder, "/")
	if folder == "" {
		return true
	}
	return path == folder || path == folder+"/" || strings.HasPrefix(path, folder+"/")
}

type Builder struct {
	mod Module
}

func NewBuilder(name string) *Builder {
	return &Builder{mod: Module{
		name:       name,
		version:    DefaultVersion,
		parameters: make(map[string]string),
	}}
}

// From returns a builder initialised with a copy of m.
func From(m Module) *Builder {
	mod := m
	mod.dependencies = slices.Clone(m.dependencies)
	mod.exportPoints = slices.Clone(m.exportPoints)
	mod.resources = slices.Clone(m.resources)
	mod.excludeResources = slices.Clone(m.excludeResources)
	mod.parameters = maps.Clone(m.parameters)
	if mod.parameters == nil {
		mod.parameters = make(map[string]string)
	}
	mod.resourceTypes = slices.Clone(m.resourceTypes)
	mod.explorerTypes = slices.Clone(m.explorerTypes)
	return &Builder{mod: mod}
}

func (b *Builder) SetNiceName(s string) *Builder {
	b.mod.niceName = s
	return b
}

func (b *Builder) SetGroup(s string) *Builder {
	b.mod.group = s
	return b
}

func (b *Builder) SetActionClass(s string) *Builder {
	b.mod.actionClass = s
	return b
}

func (b *Builder) SetImportScript(s string) *Builder {
	b.mod.importScript = s
	return b
}

func (b *Builder) SetDescription(s string) *Builder {
	b.mod.description = s
	return b
}

func (b *Builder) SetVersion(v Version) *Builder {
	b.mod.version = v
	return b
}

func (b *Builder) SetAuthor(name, email string) *Builder {
	b.mod.authorName = name
	b.mod.authorEmail = email
	return b
}

func (b *Builder) SetDateCreated(t time.Time) *Builder {
	b.mod.dateCreated = t
	return b
}

func (b *Builder) SetInstalled(user string, t time.Time) *Builder {
	b.mod.userInstalled = user
	b.mod.dateInstalled = t
	return b
}

func (b *Builder) SetCheckpointTime(t time.Time) *Builder {
	b.mod.checkpointTime = t
	return b
}

func (b *Builder) AddDependency(d Dependency) *Builder {
	b.mod.dependencies = append(b.mod.dependencies, d)
	return b
}

func (b *Builder) SetDependencies(d []Dependency) *Builder {
	b.mod.dependencies = slices.Clone(d)
	return b
}

func (b *Builder) AddExportPoint(e ExportPoint) *Builder {
	b.mod.exportPoints = append(b.mod.exportPoints, e)
	return b
}

func (b *Builder) AddResource(path string) *Builder {
	b.mod.resources = append(b.mod.resources, path)
	return b
}

func (b *Builder) AddExcludeResource(path string) *Builder {
	b.mod.excludeResources = append(b.mod.excludeResources, path)
	return b
}

func (b *Builder) SetParameter(key, value string) *Builder {
	b.mod.parameters[key] = value
	return b
}

func (b *Builder) AddResourceType(t ResourceType) *Builder {
	b.mod.resourceTypes = append(b.mod.resourceTypes, t)
	return b
}

func (b *Builder) AddExplorerType(t ExplorerType) *Builder {
	b.mod.explorerTypes = append(b.mod.explorerTypes, t)
	return b
}

func (b *Builder) SetSite(s string) *Builder {
	b.mod.site = s
	return b
}

func (b *Builder) SetExportVersion(s string) *Builder {
	b.mod.exportVersion = s
	return b
}

// Build validates the collected values and returns the module. The builder may be
// reused afterward, the returned value shares no state with it.
func (b *Builder) Build() (Module, error) {
	if !IsValidName(b.mod.name) {
		return Module{}, models_error.NewValidationError(fmt.Errorf("invalid module name '%s'", b.mod.name))
	}
	for _, d := range b.mod.dependencies {
		if !IsValidName(d.Name) {
			return Module{}, models_error.NewValidationError(fmt.Errorf("module '%s': invalid dependency name '%s'", b.mod.name, d.Name))
		}
	}
	mod := From(b.mod).mod
	mod.dateCreated = truncate(mod.dateCreated)
	mod.dateInstalled = truncate(mod.dateInstalled)
	mod.checkpointTime = truncate(mod.checkpointTime)
	return mod, nil
}

func truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Truncate(time.Second)
}

type moduleJSON struct {
	Name             string            `json:"name"`
	NiceName         string            `json:"nice_name,omitempty"`
	Group            string            `json:"group,omitempty"`
	ActionClass      string            `json:"action_class,omitempty"`
	ImportScript     string            `json:"import_script,omitempty"`
	Description      string            `json:"description,omitempty"`
	Version          Version           `json:"version"`
	AuthorName       string            `json:"author_name,omitempty"`
	AuthorEmail      string            `json:"author_email,omitempty"`
	DateCreated      time.Time         `json:"date_created"`
	UserInstalled    string            `json:"user_installed,omitempty"`
	DateInstalled    time.Time         `json:"date_installed"`
	CheckpointTime   time.Time         `json:"checkpoint_time"`
	Dependencies     []Dependency      `json:"dependencies,omitempty"`
	ExportPoints     []ExportPoint     `json:"export_points,omitempty"`
	Resources        []string          `json:"resources,omitempty"`
	ExcludeResources []string          `json:"exclude_resources,omitempty"`
	Parameters       map[string]string `json:"parameters,omitempty"`
	ResourceTypes    []ResourceType    `json:"resource_types,omitempty"`
	ExplorerTypes    []ExplorerType    `json:"explorer_types,omitempty"`
	Site             string            `json:"site,omitempty"`
	ExportVersion    string            `json:"export_version,omitempty"`
}

func (m Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(moduleJSON{
		Name:             m.name,
		NiceName:         m.niceName,
		Group:            m.group,
		ActionClass:      m.actionClass,
		ImportScript:     m.importScript,
		Description:      m.description,
		Version:          m.version,
		AuthorName:       m.authorName,
		AuthorEmail:      m.authorEmail,
		DateCreated:      m.dateCreated,
		UserInstalled:    m.userInstalled,
		DateInstalled:    m.dateInstalled,
		CheckpointTime:   m.checkpointTime,
		Dependencies:     m.dependencies,
		ExportPoints:     m.exportPoints,
		Resources:        m.resources,
		ExcludeResources: m.excludeResources,
		Parameters:       m.parameters,
		ResourceTypes:    m.resourceTypes,
		ExplorerTypes:    m.explorerTypes,
		Site:             m.site,
		ExportVersion:    m.exportVersion,
	})
}

func (m *Module) UnmarshalJSON(b []byte) error {
	var tmp moduleJSON
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	builder := NewBuilder(tmp.Name).
		SetNiceName(tmp.NiceName).
		SetGroup(tmp.Group).
		SetActionClass(tmp.ActionClass).
		SetImportScript(tmp.ImportScript).
		SetDescription(tmp.Description).
		SetVersion(tmp.Version).
		SetAuthor(tmp.AuthorName, tmp.AuthorEmail).
		SetDateCreated(tmp.DateCreated).
		SetInstalled(tmp.UserInstalled, tmp.DateInstalled).
		SetCheckpointTime(tmp.CheckpointTime).
		SetDependencies(tmp.Dependencies).
		SetSite(tmp.Site).
		SetExportVersion(tmp.ExportVersion)
	for _, e := range tmp.ExportPoints {
		builder.AddExportPoint(e)
	}
	for _, r := range tmp.Resources {
		builder.AddResource(r)
	}
	for _, r := range tmp.ExcludeResources {
		builder.AddExcludeResource(r)
	}
	for k, v := range tmp.Parameters {
		builder.SetParameter(k, v)
	}
	for _, t := range tmp.ResourceTypes {
		builder.AddResourceType(t)
	}
	for _, t := range tmp.ExplorerTypes {
		builder.AddExplorerType(t)
	}
	mod, err := builder.Build()
	if err != nil {
		return err
	}
	*m = mod
	return nil
}
