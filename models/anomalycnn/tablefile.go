/*
 *	Copyright 2025 Rener Castro
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package anomalycnn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Layer tables can be written in a small line-based markup:
//
//	# encoder
//	Conv(k=5, d=1, s=1, n=32)
//	Conv(k=3, d=2, s=1, n=128)
//	Upsample
//	Conv(k=3, d=1, s=1, n=1)
//
// Conv attributes are k (kernel size), d (dilation rate, default 1),
// s (stride, default 1) and n (filters). Upsample takes no attributes and
// may appear once, after at least one Conv.
//
// Errors wrap ErrInvalidLayerTable and name the (1-based) line.

// ParseLayerTable parses the markup format described above.
func ParseLayerTable(contents string) (LayerTable, error) {
	table := LayerTable{UpsampleAfter: -1}
	for i, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := table.addMarkupLine(line); err != nil {
			return LayerTable{}, fmt.Errorf("%w: line %d: %w", ErrInvalidLayerTable, i+1, err)
		}
	}
	if err := table.Validate(); err != nil {
		return LayerTable{}, err
	}
	return table, nil
}

// addMarkupLine appends the block declared by one non-empty markup line.
func (t *LayerTable) addMarkupLine(line string) error {
	name, args, hasArgs := strings.Cut(line, "(")
	name = strings.TrimSpace(name)
	if hasArgs {
		var ok bool
		if args, ok = strings.CutSuffix(args, ")"); !ok || strings.ContainsAny(args, "()") {
			return fmt.Errorf("malformed block %q", line)
		}
	}
	switch name {
	case "Conv":
		if !hasArgs {
			return fmt.Errorf("Conv requires attributes")
		}
		layer, err := parseConvArgs(args)
		if err != nil {
			return err
		}
		t.Layers = append(t.Layers, layer)
	case "Upsample":
		switch {
		case hasArgs && strings.TrimSpace(args) != "":
			return fmt.Errorf("Upsample takes no attributes")
		case t.UpsampleAfter >= 0:
			return fmt.Errorf("duplicate Upsample")
		case len(t.Layers) == 0:
			return fmt.Errorf("Upsample before any Conv")
		}
		t.UpsampleAfter = len(t.Layers) - 1
	default:
		return fmt.Errorf("unknown block %q", name)
	}
	return nil
}

// parseConvArgs parses the comma separated "key=value" attributes of a Conv.
func parseConvArgs(args string) (ConvLayer, error) {
	layer := ConvLayer{DilationRate: 1, Strides: 1}
	fields := map[string]*int{
		"k": &layer.KernelSize,
		"d": &layer.DilationRate,
		"s": &layer.Strides,
		"n": &layer.Filters,
	}
	seen := make(map[string]bool, len(fields))
	for _, arg := range strings.Split(args, ",") {
		key, value, ok := strings.Cut(arg, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" {
			return ConvLayer{}, fmt.Errorf("malformed attribute %q", strings.TrimSpace(arg))
		}
		field, known := fields[key]
		if !known {
			return ConvLayer{}, fmt.Errorf("unknown Conv attribute %q", key)
		}
		if seen[key] {
			return ConvLayer{}, fmt.Errorf("attribute %q set twice", key)
		}
		seen[key] = true
		n, err := strconv.ParseUint(value, 10, 31)
		if err != nil {
			return ConvLayer{}, fmt.Errorf("attribute %s=%q is not a non-negative integer", key, value)
		}
		*field = int(n)
	}
	for _, required := range []string{"k", "n"} {
		if !seen[required] {
			return ConvLayer{}, fmt.Errorf("Conv requires attribute %q", required)
		}
	}
	return layer, nil
}

// UnmarshalLayerTableJSON accepts either a bare list of layers (upsampling
// after the default layer, if the table is long enough) or an object with
// "layers" and "upsample_after".
func UnmarshalLayerTableJSON(data []byte) (LayerTable, error) {
	var table LayerTable
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("[")) {
		if err := json.Unmarshal(data, &table.Layers); err != nil {
			return LayerTable{}, fmt.Errorf("decode layer list: %w", err)
		}
		table.UpsampleAfter = -1
		if len(table.Layers) > DefaultUpsampleAfter {
			table.UpsampleAfter = DefaultUpsampleAfter
		}
	} else {
		table.UpsampleAfter = -1
		if err := json.Unmarshal(data, &table); err != nil {
			return LayerTable{}, fmt.Errorf("decode layer table: %w", err)
		}
	}
	if err := table.Validate(); err != nil {
		return LayerTable{}, err
	}
	return table, nil
}

// LoadLayerTable reads a layer table from path: JSON for ".json" files, the
// markup format otherwise.
func LoadLayerTable(path string) (LayerTable, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return LayerTable{}, fmt.Errorf("read layer table: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return UnmarshalLayerTableJSON(contents)
	}
	table, err := ParseLayerTable(string(contents))
	if err != nil {
		return LayerTable{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}
