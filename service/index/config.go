// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package index

// DefaultConfig is the default configuration of the index reader.
var DefaultConfig = Config{
	CacheSize: 64 << 20, // 64 MB of decoded blocks
}

// Config is the configuration of the index reader.
type Config struct {
	CacheSize int64
}

// WithCacheSize sets the maximum cost of the blocks kept in the reader's cache.
// The cost of a block is an estimate of its size in bytes.
func WithCacheSize(size int64) func(*Config) {
	return func(cfg *Config) {
		cfg.CacheSize = size
	}
}
