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

package configuration

import (
	"time"

	client_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/components/client/vfs"
	handler_database "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/database"
	handler_import_reader "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/import_reader"
	handler_jobs "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/jobs"
	handler_registry "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/registry"
	handler_script_shell "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/script_shell"
	helper_sql_db "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/sql_db"
	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
)

type DatabaseConfig struct {
	MySQL handler_database.Config
	SQL   helper_sql_db.Config
}

type UpdaterConfig struct {
	ExportVersion string `json:"export_version" env_var:"UPDATER_EXPORT_VERSION"`
}

type Config struct {
	ServerPort    uint                         `json:"server_port" env_var:"SERVER_PORT"`
	Logger        struct_logger.Config         `json:"logger"`
	Database      DatabaseConfig               `json:"database"`
	VFS           client_vfs.Config            `json:"vfs"`
	ImportReader  handler_import_reader.Config `json:"import_reader"`
	Registry      handler_registry.Config      `json:"registry"`
	Updater       UpdaterConfig                `json:"updater"`
	ScriptShell   handler_script_shell.Config  `json:"script_shell"`
	Jobs          handler_jobs.Config          `json:"jobs"`
	HttpAccessLog bool                         `json:"http_access_log" env_var:"HTTP_ACCESS_LOG"`
	UseUTC        bool                         `json:"use_utc" env_var:"USE_UTC"`
}

func New(path string) (*Config, error) {
	cfg := Config{
		ServerPort: 80,
		Logger: struct_logger.Config{
			Handler:    struct_logger.TextHandlerSelector,
			Level:      struct_logger.LevelInfo,
			TimeFormat: time.RFC3339Nano,
			TimeUtc:    true,
			AddMeta:    false,
		},
		Database: DatabaseConfig{
			MySQL: handler_database.Config{
				Address:          "cms-db:3306",
				Database:         "module_manager",
				Timeout:          time.Second * 30,
				MaxAllowedPacket: 16 << 20,
			},
			SQL: helper_sql_db.Config{
				MaxOpenConns:    25,
				MaxIdleConns:    25,
				ConnMaxLifetime: time.Minute * 5,
				ConnMaxIdleTime: time.Minute,
			},
		},
		VFS: client_vfs.Config{
			BaseURL:             "http://cms-vfs/api",
			Timeout:             time.Second * 30,
			BreakerThreshold:    5,
			PublishPollInterval: time.Millisecond * 500,
			PublishMaxWait:      time.Minute * 5,
		},
		ImportReader: handler_import_reader.Config{
			WorkDirPath: "/opt/module-manager/staging",
		},
		Registry: handler_registry.Config{
			InstallUser: "Admin",
		},
		Updater: UpdaterConfig{
			ExportVersion: "10",
		},
		ScriptShell: handler_script_shell.Config{
			WorkDirPath: "/opt/module-manager/scripts",
			Timeout:     time.Minute * 5,
		},
		Jobs: handler_jobs.Config{
			BufferSize:    50,
			MaxConcurrent: 1,
			RunInterval:   time.Millisecond * 500,
			MaxAge:        time.Hour * 48,
			PurgeInterval: time.Minute * 5,
		},
		UseUTC: true,
	}
	err := sb_config_hdl.Load(&cfg, nil, nil, nil, path)
	return &cfg, err
}
