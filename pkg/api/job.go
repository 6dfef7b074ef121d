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
	"net/http"
	"path"
	"time"

	models_api "github.com/SENERGY-Platform/cms-module-manager/pkg/models/api"
	models_job "github.com/SENERGY-Platform/cms-module-manager/pkg/models/job"
	"github.com/gin-gonic/gin"
)

type jobsQuery struct {
	Status   string `form:"status"`
	SortDesc bool   `form:"sort_desc"`
	Since    string `form:"since"`
	Until    string `form:"until"`
}

func getJobsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.JobsPath, func(gc *gin.Context) {
		query := jobsQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(newInvalidInputError(err))
			return
		}
		filter := models_job.Filter{
			Status:   query.Status,
			SortDesc: query.SortDesc,
		}
		if query.Since != "" {
			t, err := time.Parse(time.RFC3339Nano, query.Since)
			if err != nil {
				_ = gc.Error(newInvalidInputError(err))
				return
			}
			filter.Since = t
		}
		if query.Until != "" {
			t, err := time.Parse(time.RFC3339Nano, query.Until)
			if err != nil {
				_ = gc.Error(newInvalidInputError(err))
				return
			}
			filter.Until = t
		}
		jobs, err := a.service.Jobs(gc.Request.Context(), filter)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, jobs)
	}
}

func getJobH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.JobsPath, ":id"), func(gc *gin.Context) {
		job, err := a.service.Job(gc.Request.Context(), gc.Param("id"))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, job)
	}
}

func patchJobCancelH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(models_api.JobsPath, ":id", models_api.JobsCancelPath), func(gc *gin.Context) {
		if err := a.service.CancelJob(gc.Request.Context(), gc.Param("id")); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
