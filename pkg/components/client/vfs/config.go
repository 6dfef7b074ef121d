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

package vfs

import "time"

type Config struct {
	BaseURL             string        `json:"base_url" env_var:"VFS_BASE_URL"`
	Timeout             time.Duration `json:"timeout" env_var:"VFS_TIMEOUT"`
	BreakerThreshold    int64         `json:"breaker_threshold" env_var:"VFS_BREAKER_THRESHOLD"`
	PublishPollInterval time.Duration `json:"publish_poll_interval" env_var:"VFS_PUBLISH_POLL_INTERVAL"`
	PublishMaxWait      time.Duration `json:"publish_max_wait" env_var:"VFS_PUBLISH_MAX_WAIT"`
}
