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

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/SENERGY-Platform/cms-module-manager/pkg/api"
	client_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/components/client/vfs"
	handler_database "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/database"
	handler_database_schema "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/database/schema"
	handler_import_reader "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/import_reader"
	handler_jobs "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/jobs"
	handler_registry "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/registry"
	handler_script_shell "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/script_shell"
	handler_updater "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/updater"
	handler_vfs_memory "github.com/SENERGY-Platform/cms-module-manager/pkg/components/handler/vfs_memory"
	helper_http "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/http"
	helper_os_signal "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/os_signal"
	helper_sql_db "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/sql_db"
	helper_time "github.com/SENERGY-Platform/cms-module-manager/pkg/components/helper/time"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/configuration"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	models_vfs "github.com/SENERGY-Platform/cms-module-manager/pkg/models/vfs"
	"github.com/SENERGY-Platform/cms-module-manager/pkg/service"
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	"github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
)

var version string

func main() {
	ec := 0
	defer func() {
		os.Exit(ec)
	}()

	srvInfoHdl := srv_info_hdl.New("cms-module-manager", version)

	configuration.ParseFlags()

	config, err := configuration.New(configuration.ConfPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		ec = 1
		return
	}

	helper_time.UTC = config.UseUTC

	logger := struct_logger.New(config.Logger, os.Stderr, "", srvInfoHdl.Name())

	logger.Info("starting service", slog_attr.VersionKey, srvInfoHdl.Version(), slog_attr.ConfigValuesKey, sb_config_hdl.StructToMap(config, true))

	ctx, cf := context.WithCancel(context.Background())

	mySQLConnector, err := handler_database.NewConnector(config.Database.MySQL)
	if err != nil {
		logger.Error("creating mysql connector failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}
	sqlDB := helper_sql_db.NewSQLDatabase(mySQLConnector, config.Database.SQL)
	defer sqlDB.Close()

	databaseHdl := handler_database.New(sqlDB)
	err = databaseHdl.Migrate(ctx, handler_database_schema.Init)
	if err != nil {
		logger.Error("database migration failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	var vfsStore models_vfs.Store
	if config.VFS.BaseURL != "" {
		vfsStore = client_vfs.New(helper_http.NewClient(config.VFS.Timeout), config.VFS)
	} else {
		logger.Warn("no vfs base url configured, using in-memory resource store")
		vfsStore = handler_vfs_memory.New()
	}

	handler_import_reader.InitLogger(logger)
	importReaderHdl := handler_import_reader.New(config.ImportReader)

	handler_script_shell.InitLogger(logger)
	scriptShellHdl := handler_script_shell.New(config.ScriptShell)

	handler_updater.InitLogger(logger)
	gate := handler_updater.NewGate(vfsStore, config.Updater.ExportVersion)
	updater := handler_updater.New(vfsStore, scriptShellHdl)
	importer := handler_updater.NewImporter(vfsStore, scriptShellHdl)

	handler_registry.InitLogger(logger)
	registryHdl := handler_registry.New(databaseHdl, vfsStore, importReaderHdl, gate, updater, importer, map[string]handler_registry.ActionHook{}, config.Registry)

	handler_jobs.InitLogger(logger)
	ccHandler := ccjh.New(config.Jobs.BufferSize)
	jobsHdl := handler_jobs.New(ctx, ccHandler, config.Jobs)

	service.InitLogger(logger)
	srv := service.New(registryHdl, importReaderHdl, jobsHdl, databaseHdl)

	httpApi, err := api.New(
		srv,
		srvInfoHdl,
		logger,
		config.HttpAccessLog,
	)
	if err != nil {
		logger.Error("creating http engine failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	httpServer := &http.Server{Handler: httpApi.Handler()}
	serverListener, err := net.Listen("tcp", ":"+strconv.FormatInt(int64(config.ServerPort), 10))
	if err != nil {
		logger.Error("creating server listener failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	err = registryHdl.Init(ctx)
	if err != nil {
		logger.Error("initializing registry failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	err = ccHandler.RunAsync(config.Jobs.MaxConcurrent, config.Jobs.RunInterval)
	if err != nil {
		logger.Error("starting job handler failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	go func() {
		helper_os_signal.Wait(ctx, logger, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		cf()
	}()

	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		jobsHdl.RunPurge(ctx)
	}()

	go func() {
		logger.Info("starting http server")
		if err := httpServer.Serve(serverListener); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("starting server failed", slog_attr.ErrorKey, err)
			ec = 1
		}
		cf()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("stopping http server")
		ctxWt, cf2 := context.WithTimeout(context.Background(), time.Second*5)
		defer cf2()
		if err := httpServer.Shutdown(ctxWt); err != nil {
			logger.Error("stopping server failed", slog_attr.ErrorKey, err)
			ec = 1
		} else {
			logger.Info("http server stopped")
		}
		ctxWt2, cf3 := context.WithTimeout(context.Background(), time.Second*5)
		defer cf3()
		if err := jobsHdl.Stop(ctxWt2); err != nil {
			logger.Error("stopping job handler failed", slog_attr.ErrorKey, err)
			ec = 1
		}
		registryHdl.Shutdown(context.Background())
	}()

	wg.Wait()
}
