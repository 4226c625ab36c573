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

package loader

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/hedgelab/hedgelab/common"
	"github.com/hedgelab/hedgelab/series"
)

// Digest returns the hex encoded blake3 hash of data
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cache keeps parsed inputs keyed by kind and the blake3 digest of the file
// contents, so a file that changes on disk is parsed again. Entries are lz4
// compressed JSON held in an in-memory LRU and, when a directory is given,
// persisted there so later runs skip parsing. Safe for concurrent use.
type Cache struct {
	entries *lru.Cache
	dir     string

	memoryHits int64
	diskHits   int64
	parses     int64
}

// CacheStats counts how loads were served
type CacheStats struct {
	MemoryHits int64
	DiskHits   int64
	Parses     int64
}

// NewCache creates a cache holding at most size parsed files in memory. When
// dir is not empty parsed entries are also written to dir.
func NewCache(size int, dir string) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &Cache{entries: entries, dir: dir}, nil
}

// Len returns the number of entries held in memory
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns the load counters
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		MemoryHits: atomic.LoadInt64(&c.memoryHits),
		DiskHits:   atomic.LoadInt64(&c.diskHits),
		Parses:     atomic.LoadInt64(&c.parses),
	}
}

// Backtest loads a backtest file through the cache
func (c *Cache) Backtest(fn string) (*Backtest, error) {
	bt := &Backtest{}
	err := c.load("backtest", fn, bt, func(data []byte) (interface{}, error) {
		return ParseBacktest(data)
	})
	return bt, err
}

// Flat loads a flat record file through the cache
func (c *Cache) Flat(fn string, opts FlatOptions) (*series.Returns, error) {
	res := &series.Returns{}
	kind := fmt.Sprintf("flat:%s:%s", opts.DateField, opts.ValueField)
	err := c.load(kind, fn, res, func(data []byte) (interface{}, error) {
		return ParseFlat(data, opts)
	})
	return res, err
}

// Index loads an index file through the cache
func (c *Cache) Index(fn string) (*series.Returns, error) {
	return c.Flat(fn, IndexRecords())
}

// Positions loads a position file through the cache
func (c *Cache) Positions(fn string) (*series.Ratios, error) {
	res := &series.Ratios{}
	err := c.load("positions", fn, res, func(data []byte) (interface{}, error) {
		return ParsePositions(data)
	})
	return res, err
}

// entryPath is the on-disk location of the entry for key
func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, Digest([]byte(key))+".json"+common.Lz4Ext)
}

// get returns the decompressed entry for key from memory or disk
func (c *Cache) get(key string) ([]byte, bool) {
	if cached, ok := c.entries.Get(key); ok {
		raw, err := common.Decompress(cached.([]byte))
		if err == nil {
			atomic.AddInt64(&c.memoryHits, 1)
			log.Debug().Str("Key", key).Msg("memory cache hit")
			return raw, true
		}
		log.Warn().Err(err).Str("Key", key).Msg("could not decompress cache entry")
		c.entries.Remove(key)
	}

	if c.dir == "" {
		return nil, false
	}

	fn := c.entryPath(key)
	compressed, err := os.ReadFile(fn)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("FileName", fn).Msg("could not read cache entry")
		}
		return nil, false
	}

	raw, err := common.Decompress(compressed)
	if err != nil {
		log.Warn().Err(err).Str("FileName", fn).Msg("discarding corrupt cache entry")
		return nil, false
	}

	c.entries.Add(key, compressed)
	atomic.AddInt64(&c.diskHits, 1)
	log.Debug().Str("Key", key).Str("FileName", fn).Msg("disk cache hit")
	return raw, true
}

// put stores a compressed entry in memory and, when enabled, on disk. Disk
// entries are written to a temporary file and renamed into place.
func (c *Cache) put(key string, compressed []byte) {
	c.entries.Add(key, compressed)

	if c.dir == "" {
		return
	}

	fn := c.entryPath(key)
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		log.Warn().Err(err).Str("Dir", c.dir).Msg("could not create cache entry")
		return
	}

	_, err = tmp.Write(compressed)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), fn)
	}
	if err != nil {
		os.Remove(tmp.Name())
		log.Warn().Err(err).Str("FileName", fn).Msg("could not write cache entry")
	}
}

// load decodes the cached value for fn into out, parsing and caching the
// file on a miss
func (c *Cache) load(kind, fn string, out interface{}, parse func([]byte) (interface{}, error)) error {
	data, err := common.ReadFile(fn)
	if err != nil {
		return errors.Wrapf(err, "read %s %s", kind, fn)
	}

	key := fmt.Sprintf("%s:%s", kind, Digest(data))
	if raw, ok := c.get(key); ok {
		if err := json.Unmarshal(raw, out); err == nil {
			return nil
		}
		log.Warn().Str("Key", key).Msg("could not decode cache entry; parsing again")
	}

	parsed, err := parse(data)
	if err != nil {
		return errors.Wrapf(err, "load %s %s", kind, fn)
	}
	atomic.AddInt64(&c.parses, 1)

	raw, err := json.Marshal(parsed)
	if err != nil {
		return err
	}

	compressed, err := common.Compress(raw)
	if err != nil {
		return err
	}
	c.put(key, compressed)

	return json.Unmarshal(raw, out)
}
