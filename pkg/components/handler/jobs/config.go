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

package jobs

import "time"

type Config struct {
	BufferSize    int           `json:"buffer_size" env_var:"JOBS_BUFFER_SIZE"`
	MaxConcurrent int           `json:"max_concurrent" env_var:"JOBS_MAX_CONCURRENT"`
	RunInterval   time.Duration `json:"run_interval" env_var:"JOBS_RUN_INTERVAL"`
	MaxAge        time.Duration `json:"max_age" env_var:"JOBS_MAX_AGE"`
	PurgeInterval time.Duration `json:"purge_interval" env_var:"JOBS_PURGE_INTERVAL"`
}
