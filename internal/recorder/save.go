// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jeranaias/pppw/internal/audio"
	"github.com/jeranaias/pppw/internal/util"
)

// FileName returns the name Save uses, e.g. "recording-3-20250102-150405.webm".
func (a *Artifact) FileName() string {
	return fmt.Sprintf("recording-%d-%s.%s", a.ID, a.Created.Format("20060102-150405"), audio.Extension(a.MimeType))
}

// Save writes the recording into dir so it can be played back, and returns
// the file path.
func (a *Artifact) Save(dir string) (string, error) {
	if a == nil || len(a.Data) == 0 {
		return "", errors.New("no recording to save")
	}
	path := filepath.Join(dir, a.FileName())
	if err := util.AtomicWriteFile(path, a.Data, 0600); err != nil {
		return "", err
	}
	return path, nil
}
