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

	models_api "github.com/SENERGY-Platform/cms-module-manager/pkg/models/api"
	"github.com/gin-gonic/gin"
)

func getHealthH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.HealthCheckPath, func(gc *gin.Context) {
		if err := a.service.Health(gc.Request.Context()); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
