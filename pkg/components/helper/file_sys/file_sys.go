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

package file_sys

import (
	"io"
	"io/fs"
	"os"
)

func FindFile(fSys fs.FS, match func(v string) bool) (string, error) {
	var filePath string
	err := fs.WalkDir(fSys, ".", func(currentPath string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !dirEntry.IsDir() && match(dirEntry.Name()) {
			filePath = currentPath
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if filePath == "" {
		return "", fs.ErrNotExist
	}
	return filePath, nil
}

// SpoolFile copies srcPath of fSys to a new temporary file in dir and returns its path.
func SpoolFile(fSys fs.FS, srcPath, dir string) (string, error) {
	src, err := fSys.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	dst, err := os.CreateTemp(dir, "content-*")
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
