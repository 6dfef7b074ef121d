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

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	models_error "github.com/SENERGY-Platform/cms-module-manager/pkg/models/error"
	models_storage "github.com/SENERGY-Platform/cms-module-manager/pkg/models/storage"
)

const selectFromModulesStatement = "SELECT name, position, data, added, updated FROM modules"

type rowScanner interface {
	Scan(dest ...any) error
}

func (h *Handler) ListMod(ctx context.Context) ([]models_storage.Module, error) {
	rows, err := h.sqlDB.QueryContext(ctx, selectFromModulesStatement+" ORDER BY position;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var mods []models_storage.Module
	for rows.Next() {
		mod, err := scanMod(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return mods, nil
}

func (h *Handler) ReadMod(ctx context.Context, name string) (models_storage.Module, error) {
	mod, err := scanMod(h.sqlDB.QueryRowContext(ctx, selectFromModulesStatement+" WHERE name = ?;", name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models_storage.Module{}, models_error.NotFoundErr
		}
		return models_storage.Module{}, err
	}
	return mod, nil
}

func (h *Handler) CreateMod(ctx context.Context, mod models_storage.Module) error {
	data, err := json.Marshal(mod.Module)
	if err != nil {
		return err
	}
	_, err = h.sqlDB.ExecContext(
		ctx,
		"INSERT INTO modules (name, position, data, added, updated) VALUES (?, ?, ?, ?, ?)",
		mod.Name,
		mod.Position,
		string(data),
		mod.Added,
		mod.Updated,
	)
	return err
}

func (h *Handler) UpdateMod(ctx context.Context, mod models_storage.Module) error {
	data, err := json.Marshal(mod.Module)
	if err != nil {
		return err
	}
	res, err := h.sqlDB.ExecContext(ctx, "UPDATE modules SET position = ?, data = ?, updated = ? WHERE name = ?", mod.Position, string(data), mod.Updated, mod.Name)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (h *Handler) DeleteMod(ctx context.Context, name string) error {
	res, err := h.sqlDB.ExecContext(ctx, "DELETE FROM modules WHERE name = ?", name)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanMod(row rowScanner) (models_storage.Module, error) {
	var mod models_storage.Module
	var data, at, ut []uint8
	err := row.Scan(&mod.Name, &mod.Position, &data, &at, &ut)
	if err != nil {
		return models_storage.Module{}, err
	}
	if err = json.Unmarshal(data, &mod.Module); err != nil {
		return models_storage.Module{}, err
	}
	if mod.Added, err = time.Parse(timeLayout, string(at)); err != nil {
		return models_storage.Module{}, err
	}
	if mod.Updated, err = time.Parse(timeLayout, string(ut)); err != nil {
		return models_storage.Module{}, err
	}
	return mod, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models_error.NotFoundErr
	}
	return nil
}
