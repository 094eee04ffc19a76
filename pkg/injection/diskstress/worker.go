// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diskstress

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
)

// BlockSize is the size of a single written block.
const BlockSize = 1024 * 1024

// Work repeatedly writes blocks of data to a temporary file in folder, reads
// them back and discards the file, until ctx is done. The file is unlinked
// right after creation so a killed worker leaves nothing behind.
func Work(ctx context.Context, folder string, blocks int) error {
	data := bytes.Repeat([]byte{'x'}, BlockSize)
	buffer := make([]byte, BlockSize)

	for ctx.Err() == nil {
		if err := cycle(ctx, folder, blocks, data, buffer); err != nil {
			return err
		}
	}
	return nil
}

func cycle(ctx context.Context, folder string, blocks int, data, buffer []byte) error {
	file, err := os.CreateTemp(folder, "faultload_disk_")
	if err != nil {
		return errors.Wrapf(err, "cannot create temporary file in %q", folder)
	}
	defer file.Close()
	if err := os.Remove(file.Name()); err != nil {
		return errors.Wrapf(err, "cannot unlink %q", file.Name())
	}

	for i := 0; i < blocks && ctx.Err() == nil; i++ {
		if _, err := file.Write(data); err != nil {
			return errors.Wrapf(err, "cannot write block %d", i)
		}
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "cannot seek")
	}

	for i := 0; i < blocks && ctx.Err() == nil; i++ {
		if _, err := io.ReadFull(file, buffer); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return errors.Wrapf(err, "cannot read block %d", i)
		}
	}
	return nil
}
