// Copyright 2025 CardinalHQ, Inc
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

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

func JSONDecode(j io.Reader, target any) error {
	decoder := json.NewDecoder(j)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// LoadJSON decodes a JSON file strictly into target.
func LoadJSON(fname string, target any) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := JSONDecode(f, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fname, err)
	}
	return nil
}

// WriteJSON writes v to fname as indented JSON.
func WriteJSON(fname string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fname, err)
	}
	return os.WriteFile(fname, append(b, '\n'), 0o644)
}
