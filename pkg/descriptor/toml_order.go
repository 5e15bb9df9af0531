// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
)

const tomlPathSep = "\x00"

// keyOrder records, per table path, the order in which keys first appear in
// a TOML document. Decoding into maps loses that order.
type keyOrder map[string][]string

// scanKeyOrder walks the top-level expressions of data. Dotted keys and
// inline tables register every intermediate table.
func scanKeyOrder(data []byte) (keyOrder, error) {
	order := make(keyOrder)

	var (
		p     unstable.Parser
		table []string
	)
	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = keyParts(expr.Key())
			order.add(nil, table)
		case unstable.KeyValue:
			order.keyValue(table, expr)
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return order, nil
}

func (o keyOrder) keyValue(table []string, kv *unstable.Node) {
	key := keyParts(kv.Key())
	o.add(table, key)

	value := kv.Value()
	if value.Kind != unstable.InlineTable {
		return
	}
	path := append(slices.Clone(table), key...)
	it := value.Children()
	for it.Next() {
		if child := it.Node(); child.Kind == unstable.KeyValue {
			o.keyValue(path, child)
		}
	}
}

// add records each segment of key under the table it belongs to.
func (o keyOrder) add(table, key []string) {
	path := slices.Clone(table)
	for _, k := range key {
		id := strings.Join(path, tomlPathSep)
		if !slices.Contains(o[id], k) {
			o[id] = append(o[id], k)
		}
		path = append(path, k)
	}
}

// keys returns the keys of m, the table at path, in declaration order. Keys
// the scan never saw follow in sorted order.
func (o keyOrder) keys(m map[string]any, path ...string) []string {
	out := make([]string, 0, len(m))
	for _, k := range o[strings.Join(path, tomlPathSep)] {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	var rest []string
	for k := range m {
		if !slices.Contains(out, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}
