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

package script_shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/SENERGY-Platform/cms-module-manager/pkg/models/slog_attr"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// preamble echoes every executed command into the output.
const preamble = "set -x\n"

// Handler runs module import scripts with an embedded POSIX shell interpreter.
type Handler struct {
	config Config
	mu     sync.Mutex
}

func New(config Config) *Handler {
	return &Handler{config: config}
}

// Execute runs script and returns the combined output. Variables in env are exported to the
// script in addition to the process environment. Scripts are executed one at a time.
func (h *Handler) Execute(ctx context.Context, script string, env map[string]string) (string, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(preamble+script), "import-script")
	if err != nil {
		return "", fmt.Errorf("parsing script failed: %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.config.Timeout > 0 {
		var cf context.CancelFunc
		ctx, cf = context.WithTimeout(ctx, h.config.Timeout)
		defer cf()
	}
	var output bytes.Buffer
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(environ(env)...)),
		interp.StdIO(nil, &output, &output),
	}
	if h.config.WorkDirPath != "" {
		opts = append(opts, interp.Dir(h.config.WorkDirPath))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return "", fmt.Errorf("creating interpreter failed: %w", err)
	}
	logger.Debug("executing script", slog_attr.CountKey, len(prog.Stmts)-1)
	err = runner.Run(ctx, prog)
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return output.String(), fmt.Errorf("script exited with status %d", exitStatus)
		}
		return output.String(), fmt.Errorf("executing script failed: %w", err)
	}
	return output.String(), nil
}

func environ(env map[string]string) []string {
	pairs := os.Environ()
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	return pairs
}
