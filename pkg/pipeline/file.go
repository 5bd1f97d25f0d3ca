// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// 📥 Source supplies the text a run starts from
type Source interface {
	ReadText(ctx context.Context) (string, error)
}

// 📤 Sink receives the final text, replacing whatever it held
type Sink interface {
	WriteText(ctx context.Context, text string) error
}

// 💾 File is a Source and Sink backed by a path on the local file system
type File struct {
	Path string
}

var (
	_ Source = File{}
	_ Sink   = File{}
)

// ReadText reads the whole file
func (f File) ReadText(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", errors.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// WriteText replaces the file atomically
func (f File) WriteText(ctx context.Context, text string) error {
	return WriteFileAtomic(f.Path, []byte(text))
}

// WriteFileAtomic writes content to a temporary file next to path and renames
// it over path. On failure the temporary file is removed and path is left as
// it was. An existing file keeps its permissions, and a symlink is followed
// so that its target is replaced rather than the link.
func WriteFileAtomic(path string, content []byte) (err error) {
	if resolved, evalErr := filepath.EvalSymlinks(path); evalErr == nil {
		path = resolved
	}

	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".patchrc-*")
	if err != nil {
		return errors.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return errors.Errorf("writing temporary file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Errorf("syncing temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temporary file: %w", err)
	}
	if err = os.Chmod(tmpPath, mode); err != nil {
		return errors.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Errorf("renaming temporary file: %w", err)
	}

	return nil
}
