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

package storage

import (
	"time"

	models_module "github.com/SENERGY-Platform/cms-module-manager/pkg/models/module"
)

// Module is the persisted form of an installed module. Position keeps the installation order.
type Module struct {
	Name     string
	Position int
	Module   models_module.Module
	Added    time.Time
	Updated  time.Time
}
