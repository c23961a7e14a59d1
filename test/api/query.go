/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query is an ordered set of query parameters. Values may be strings,
// integers, floats or booleans. The zero value is ready to use.
type Query struct {
	keys   []string
	values map[string]string
}

// NewQuery builds a query from alternating key/value arguments, e.g.
// NewQuery("limit", 5, "skip", 0).
func NewQuery(pairs ...any) *Query {
	q := &Query{}

	for i := 0; i+1 < len(pairs); i += 2 {
		q.Set(fmt.Sprint(pairs[i]), pairs[i+1])
	}

	return q
}

// Set adds a parameter, or replaces its value keeping the original position.
func (q *Query) Set(key string, value any) *Query {
	if q.values == nil {
		q.values = map[string]string{}
	}

	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}

	q.values[key] = formatQueryValue(value)

	return q
}

func (q *Query) Has(key string) bool {
	if q == nil {
		return false
	}

	_, ok := q.values[key]

	return ok
}

func (q *Query) Get(key string) string {
	if q == nil {
		return ""
	}

	return q.values[key]
}

func (q *Query) Len() int {
	if q == nil {
		return 0
	}

	return len(q.keys)
}

// Clone returns an independent copy, nil queries clone to an empty one.
func (q *Query) Clone() *Query {
	out := &Query{}

	if q == nil {
		return out
	}

	for _, key := range q.keys {
		out.Set(key, q.values[key])
	}

	return out
}

// Encode renders the query in insertion order with form encoding.
func (q *Query) Encode() string {
	if q.Len() == 0 {
		return ""
	}

	parts := make([]string, 0, len(q.keys))

	for _, key := range q.keys {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(q.values[key]))
	}

	return strings.Join(parts, "&")
}

func formatQueryValue(value any) string {
	switch t := value.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	}

	return fmt.Sprint(value)
}
