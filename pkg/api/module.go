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
	"path"

	models_api "github.com/SENERGY-Platform/cms-module-manager/pkg/models/api"
	"github.com/gin-gonic/gin"
)

var errInvalidDirection = errors.New("invalid direction")

type dependenciesQuery struct {
	Direction string `form:"direction"`
}

type deleteModuleQuery struct {
	PreserveLibs bool `form:"preserve_libs"`
}

func getModulesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.ModulesPath, func(gc *gin.Context) {
		mods, err := a.service.Modules(gc.Request.Context())
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, mods)
	}
}

func getModuleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.ModulesPath, ":name"), func(gc *gin.Context) {
		mod, err := a.service.Module(gc.Request.Context(), gc.Param("name"))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, mod)
	}
}

func getModuleDependenciesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.ModulesPath, ":name", models_api.DependenciesPath), func(gc *gin.Context) {
		query := dependenciesQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(newInvalidInputError(err))
			return
		}
		var forward bool
		switch query.Direction {
		case "", "backward":
		case "forward":
			forward = true
		default:
			_ = gc.Error(newInvalidInputError(errInvalidDirection))
			return
		}
		deps, err := a.service.ModuleDependencies(gc.Request.Context(), gc.Param("name"), forward)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, deps)
	}
}

func postModuleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, models_api.ModulesPath, func(gc *gin.Context) {
		var req models_api.ModuleRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(newInvalidInputError(err))
			return
		}
		jID, err := a.service.ImportModule(gc.Request.Context(), req.Path)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func putModuleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPut, path.Join(models_api.ModulesPath, ":name"), func(gc *gin.Context) {
		var req models_api.ModuleRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(newInvalidInputError(err))
			return
		}
		jID, err := a.service.ReplaceModule(gc.Request.Context(), gc.Param("name"), req.Path)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func deleteModuleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(models_api.ModulesPath, ":name"), func(gc *gin.Context) {
		query := deleteModuleQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(newInvalidInputError(err))
			return
		}
		jID, err := a.service.DeleteModule(gc.Request.Context(), gc.Param("name"), query.PreserveLibs)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func getExportPointsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.ExportPointsPath, func(gc *gin.Context) {
		eps, err := a.service.ExportPoints(gc.Request.Context())
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, eps)
	}
}

func postImportOrderH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, models_api.ImportOrderPath, func(gc *gin.Context) {
		var req models_api.ImportOrderRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(newInvalidInputError(err))
			return
		}
		order, err := a.service.ImportOrder(gc.Request.Context(), req.Dir)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, order)
	}
}
