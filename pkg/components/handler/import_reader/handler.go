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

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	helper_archive "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/archive"
	helper_file_sys "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/file_sys"
	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_import "github.com/SENERGY-Platform/cms-module-manager/pkg/models/import_data"
	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the only manifest format version eligible for incremental updates.
const ExportVersion = "10"

var manifestNames = map[string]struct{}{
	"manifest.yml":  {},
	"manifest.yaml": {},
}

type Handler struct {
	config Config
}

func New(config Config) *Handler {
	return &Handler{config: config}
}

func (h *Handler) Init() error {
	return os.MkdirAll(h.config.WorkDirPath, 0775)
}

func (h *Handler) ExportVersion() string {
	return ExportVersion
}

// ReadModule returns the module descriptor of a package without staging any content.
func (h *Handler) ReadModule(ctx context.Context, pkgPath string) (models_module.Module, error) {
	fSys, cleanup, err := h.openPackage(pkgPath)
	if err != nil {
		return models_module.Module{}, err
	}
	defer cleanup()
	mf, _, err := readManifest(fSys, pkgPath)
	if err != nil {
		return models_module.Module{}, err
	}
	if err = ctx.Err(); err != nil {
		return models_module.Module{}, err
	}
	return buildModule(mf, pkgPath)
}

// ReadModuleData stages the module descriptor and all manifest entries of a package. Content
// is spooled to temporary files which are removed by calling Cleanup on the result.
func (h *Handler) ReadModuleData(ctx context.Context, pkgPath string) (*models_import.ModuleImport, error) {
	fSys, cleanup, err := h.openPackage(pkgPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	mf, baseFS, err := readManifest(fSys, pkgPath)
	if err != nil {
		return nil, err
	}
	mod, err := buildModule(mf, pkgPath)
	if err != nil {
		return nil, err
	}
	data := models_import.New(mod, mf.Info.ExportVersion)
	defer func() {
		if err != nil {
			if e := data.Cleanup(); e != nil {
				logger.Error("removing staged content failed", slog_attr.PathKey, pkgPath, slog_attr.ErrorKey, e)
			}
		}
	}()
	for i, file := range mf.Files {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		var entry *models_import.ResourceEntry
		entry, err = h.newResourceEntry(baseFS, file)
		if err != nil {
			err = models_error.NewParseError(fmt.Sprintf("%s: files[%d]", pkgPath, i), err)
			return nil, err
		}
		data.Entries = append(data.Entries, entry)
	}
	logger.Debug("read module data", slog_attr.NameKey, mod.Name(), slog_attr.CountKey, len(data.Entries))
	return data, nil
}

func (h *Handler) openPackage(pkgPath string) (fs.FS, func(), error) {
	noop := func() {}
	fileInfo, err := os.Stat(pkgPath)
	if err != nil {
		return nil, noop, err
	}
	if fileInfo.IsDir() {
		return os.DirFS(pkgPath), noop, nil
	}
	tmpDir, err := os.MkdirTemp(h.config.WorkDirPath, "package-*")
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logger.Error("removing temporary package dir failed", slog_attr.PathKey, tmpDir, slog_attr.ErrorKey, err)
		}
	}
	switch {
	case strings.HasSuffix(pkgPath, ".zip"):
		_, err = helper_archive.ExtractZip(pkgPath, tmpDir)
	case strings.HasSuffix(pkgPath, ".tar.gz"), strings.HasSuffix(pkgPath, ".tgz"):
		var file *os.File
		file, err = os.Open(pkgPath)
		if err == nil {
			_, err = helper_archive.ExtractTarGz(file, tmpDir)
			file.Close()
		}
	default:
		err = fmt.Errorf("unsupported package format '%s'", path.Base(pkgPath))
	}
	if err != nil {
		cleanup()
		return nil, noop, models_error.NewParseError(pkgPath, err)
	}
	return os.DirFS(tmpDir), cleanup, nil
}

func readManifest(fSys fs.FS, pkgPath string) (manifest, fs.FS, error) {
	mfPath, err := helper_file_sys.FindFile(fSys, func(v string) bool {
		_, ok := manifestNames[v]
		return ok
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return manifest{}, nil, models_error.NewParseError(pkgPath, errors.New("manifest missing"))
		}
		return manifest{}, nil, err
	}
	b, err := fs.ReadFile(fSys, mfPath)
	if err != nil {
		return manifest{}, nil, err
	}
	var mf manifest
	if err = yaml.Unmarshal(b, &mf); err != nil {
		return manifest{}, nil, models_error.NewParseError(path.Join(pkgPath, mfPath), err)
	}
	baseFS, err := fs.Sub(fSys, path.Dir(mfPath))
	if err != nil {
		return manifest{}, nil, err
	}
	return mf, baseFS, nil
}

func buildModule(mf manifest, pkgPath string) (models_module.Module, error) {
	m := mf.Module
	builder := models_module.NewBuilder(m.Name).
		SetNiceName(m.NiceName).
		SetGroup(m.Group).
		SetActionClass(m.ActionClass).
		SetImportScript(m.ImportScript).
		SetDescription(m.Description).
		SetAuthor(m.Author.Name, m.Author.Email).
		SetSite(m.Site).
		SetExportVersion(mf.Info.ExportVersion)
	if m.Version != "" {
		v, err := models_module.ParseVersion(m.Version)
		if err != nil {
			return models_module.Module{}, models_error.NewParseError(pkgPath, err)
		}
		builder.SetVersion(v)
	}
	if m.DateCreated != nil {
		builder.SetDateCreated(*m.DateCreated)
	}
	if m.DateInstalled != nil {
		builder.SetInstalled(m.UserInstalled, *m.DateInstalled)
	}
	for _, d := range m.Dependencies {
		v := models_module.DefaultVersion
		if d.Version != "" {
			var err error
			if v, err = models_module.ParseVersion(d.Version); err != nil {
				return models_module.Module{}, models_error.NewParseError(pkgPath, err)
			}
		}
		builder.AddDependency(models_module.NewDependency(d.Name, v))
	}
	for _, e := range m.ExportPoints {
		builder.AddExportPoint(models_module.ExportPoint{URI: e.URI, Destination: e.Destination})
	}
	for _, r := range m.Resources {
		builder.AddResource(r)
	}
	for _, r := range m.ExcludeResources {
		builder.AddExcludeResource(r)
	}
	for k, v := range m.Parameters {
		builder.SetParameter(k, v)
	}
	for _, t := range m.ResourceTypes {
		builder.AddResourceType(models_module.ResourceType{ID: t.ID, Name: t.Name, Class: t.Class})
	}
	for _, t := range m.ExplorerTypes {
		builder.AddExplorerType(models_module.ExplorerType{Name: t.Name, Reference: t.Reference})
	}
	mod, err := builder.Build()
	if err != nil {
		return models_module.Module{}, models_error.NewParseError(pkgPath, err)
	}
	return mod, nil
}

func (h *Handler) newResourceEntry(baseFS fs.FS, file manifestFile) (*models_import.ResourceEntry, error) {
	if file.Destination == "" {
		return nil, errors.New("missing destination")
	}
	entry := &models_import.ResourceEntry{
		Path: resourcePath(file.Destination, file.Folder),
		Attributes: models_vfs.Resource{
			TypeID: file.Type,
			Flags:  file.Flags,
			Folder: file.Folder,
		},
	}
	var err error
	if file.StructureID != "" {
		if entry.Attributes.StructureID, err = uuid.Parse(file.StructureID); err != nil {
			return nil, fmt.Errorf("invalid structure id: %w", err)
		}
		entry.HasStructureID = true
	} else {
		entry.Attributes.StructureID = uuid.New()
	}
	if file.ResourceID != "" {
		if entry.Attributes.ResourceID, err = uuid.Parse(file.ResourceID); err != nil {
			return nil, fmt.Errorf("invalid resource id: %w", err)
		}
	} else {
		entry.Attributes.ResourceID = uuid.New()
	}
	if entry.Attributes.UserCreated, err = parseOptionalID(file.UserCreated); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}
	if entry.Attributes.UserLastModified, err = parseOptionalID(file.UserLastModified); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	entry.Attributes.DateCreated = timeOrDefault(file.DateCreated, now)
	if file.DateLastModified != nil {
		entry.Attributes.DateLastModified = *file.DateLastModified
		entry.HasDateLastModified = true
	} else {
		entry.Attributes.DateLastModified = now
	}
	entry.Attributes.DateReleased = timeOrDefault(file.DateReleased, time.Time{})
	entry.Attributes.DateExpired = timeOrDefault(file.DateExpired, time.Time{})
	for _, p := range file.Properties {
		entry.Properties = append(entry.Properties, models_vfs.Property{Name: p.Name, Value: p.Value})
	}
	for _, a := range file.AccessControl {
		principal, err := uuid.Parse(a.PrincipalID)
		if err != nil {
			return nil, fmt.Errorf("invalid principal id: %w", err)
		}
		entry.AccessControl = append(entry.AccessControl, models_vfs.AccessControlEntry{
			PrincipalID: principal,
			Allowed:     a.Allowed,
			Denied:      a.Denied,
			Flags:       a.Flags,
		})
	}
	for _, r := range file.Relations {
		target, err := parseOptionalID(r.TargetID)
		if err != nil {
			return nil, fmt.Errorf("invalid relation target: %w", err)
		}
		entry.Relations = append(entry.Relations, models_vfs.Relation{
			TargetID:   target,
			TargetPath: r.TargetPath,
			Type:       r.Type,
		})
	}
	if file.Source != "" && !file.Folder {
		p, err := helper_file_sys.SpoolFile(baseFS, strings.TrimPrefix(file.Source, "/"), h.config.WorkDirPath)
		if err != nil {
			return nil, err
		}
		entry.SetContentPath(p)
	}
	return entry, nil
}

func resourcePath(dest string, folder bool) string {
	p := "/" + strings.Trim(dest, "/")
	if folder && p != "/" {
		p += "/"
	}
	return p
}

func parseOptionalID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func timeOrDefault(t *time.Time, def time.Time) time.Time {
	if t == nil {
		return def
	}
	return *t
}
