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

package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func ExtractTarGz(rc io.Reader, targetPath string) (string, error) {
	gzipReader, err := gzip.NewReader(rc)
	if err != nil {
		return "", err
	}
	defer gzipReader.Close()
	tarReader := tar.NewReader(gzipReader)
	var rootDir string
	for {
		tarHeader, err := tarReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		dst, err := joinSafe(targetPath, tarHeader.Name)
		if err != nil {
			return "", err
		}
		if rootDir == "" {
			rootDir = rootOf(tarHeader.Name)
		}
		switch tarHeader.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(dst, dirMode(fs.FileMode(tarHeader.Mode))); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err = writeFile(dst, fs.FileMode(tarHeader.Mode), tarReader); err != nil {
				return "", err
			}
		}
	}
	return rootDir, nil
}

func ExtractZip(name, targetPath string) (string, error) {
	zipReader, err := zip.OpenReader(name)
	if err != nil {
		return "", err
	}
	defer zipReader.Close()
	var rootDir string
	for _, file := range zipReader.File {
		dst, err := joinSafe(targetPath, file.Name)
		if err != nil {
			return "", err
		}
		if rootDir == "" {
			rootDir = rootOf(file.Name)
		}
		if file.FileInfo().IsDir() {
			if err = os.MkdirAll(dst, dirMode(file.Mode())); err != nil {
				return "", err
			}
			continue
		}
		if err = extractZipFile(file, dst); err != nil {
			return "", err
		}
	}
	return rootDir, nil
}

func extractZipFile(file *zip.File, dst string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeFile(dst, file.Mode(), rc)
}

func writeFile(name string, mode fs.FileMode, reader io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(name), 0775); err != nil {
		return err
	}
	if mode.Perm() == 0 {
		mode = 0664
	}
	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, reader)
	if err != nil {
		return err
	}
	return nil
}

func joinSafe(targetPath, name string) (string, error) {
	p := filepath.Join(targetPath, name)
	if p != filepath.Clean(targetPath) && !strings.HasPrefix(p, filepath.Clean(targetPath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal archive path '%s'", name)
	}
	return p, nil
}

func rootOf(name string) string {
	name = strings.TrimPrefix(name, "./")
	if i := strings.Index(name, "/"); i > 0 {
		return name[:i]
	}
	return ""
}

func dirMode(mode fs.FileMode) fs.FileMode {
	if mode.Perm() == 0 {
		return 0775
	}
	return mode.Perm()
}
