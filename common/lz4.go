// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
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

package common

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

const Lz4Ext = ".lz4"

func Compress(in []byte) ([]byte, error) {
	r := bytes.NewReader(in)
	w := &bytes.Buffer{}
	zw := lz4.NewWriter(w)
	_, err := io.Copy(zw, r)
	if err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func Decompress(in []byte) ([]byte, error) {
	r := bytes.NewReader(in)
	w := &bytes.Buffer{}
	zr := lz4.NewReader(r)
	_, err := io.Copy(w, zr)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// IsCompressed returns true if fn names an lz4 compressed file
func IsCompressed(fn string) bool {
	return strings.HasSuffix(strings.ToLower(fn), Lz4Ext)
}

// ReadFile reads fn and transparently decompresses it when the name ends in
// .lz4
func ReadFile(fn string) ([]byte, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	if IsCompressed(fn) {
		return Decompress(data)
	}
	return data, nil
}

type lz4File struct {
	zw *lz4.Writer
	fh *os.File
}

func (f *lz4File) Write(p []byte) (int, error) {
	return f.zw.Write(p)
}

func (f *lz4File) Close() error {
	if err := f.zw.Close(); err != nil {
		f.fh.Close()
		return err
	}
	return f.fh.Close()
}

// CreateFile creates fn for writing. Output is lz4 compressed when the name
// ends in .lz4
func CreateFile(fn string) (io.WriteCloser, error) {
	fh, err := os.Create(fn)
	if err != nil {
		return nil, err
	}

	if !IsCompressed(fn) {
		return fh, nil
	}

	return &lz4File{zw: lz4.NewWriter(fh), fh: fh}, nil
}
