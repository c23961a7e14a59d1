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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

func generateRandomName(prefix string) string {
	bytes := make([]byte, 4) // 8 hex characters
	_, _ = rand.Read(bytes)

	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(bytes))
}

// GenerateTestID returns a short random identifier for test data.
func GenerateTestID() string {
	return generateRandomName("test")
}

// Signature returns a unique marker for titles so that listings filtered by
// "contains" only match data created by the calling test.
func Signature(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), generateRandomName("sig"))
}

// MediaPayloadBuilder builds media payloads for testing.
type MediaPayloadBuilder struct {
	payload map[string]any
}

// NewMediaPayload creates a media payload with a unique, timestamped title.
func NewMediaPayload() *MediaPayloadBuilder {
	return &MediaPayloadBuilder{
		payload: map[string]any{
			"title":       fmt.Sprintf("Test Media %d", time.Now().UnixMilli()),
			"description": "Descripción de prueba",
			"type":        "video",
			"categories":  []any{},
			"tags":        []any{"qa-test"},
		},
	}
}

// WithTitle sets the media title.
func (b *MediaPayloadBuilder) WithTitle(title string) *MediaPayloadBuilder {
	b.payload["title"] = title
	return b
}

// WithDescription sets the media description.
func (b *MediaPayloadBuilder) WithDescription(description string) *MediaPayloadBuilder {
	b.payload["description"] = description
	return b
}

// WithType sets the media type, e.g. video or audio.
func (b *MediaPayloadBuilder) WithType(mediaType string) *MediaPayloadBuilder {
	b.payload["type"] = mediaType
	return b
}

// WithTags replaces the tags.
func (b *MediaPayloadBuilder) WithTags(tags ...string) *MediaPayloadBuilder {
	b.payload["tags"] = toAnySlice(tags)
	return b
}

// WithCategories replaces the category IDs.
func (b *MediaPayloadBuilder) WithCategories(categories ...string) *MediaPayloadBuilder {
	b.payload["categories"] = toAnySlice(categories)
	return b
}

// With merges arbitrary caller fields over the defaults.
func (b *MediaPayloadBuilder) With(overrides map[string]any) *MediaPayloadBuilder {
	b.payload = MergePayload(b.payload, overrides)
	return b
}

// Build returns the completed media payload.
func (b *MediaPayloadBuilder) Build() map[string]any {
	return deepCopy(b.payload)
}

// CouponPayloadBuilder builds coupon payloads for testing.
type CouponPayloadBuilder struct {
	payload map[string]any
}

// NewCouponPayload creates a reusable amount coupon in the given group that is
// valid from now until the same time tomorrow.
func NewCouponPayload(groupID string) *CouponPayloadBuilder {
	now := time.Now().UTC()
	tomorrow := now.Add(24 * time.Hour)

	return &CouponPayloadBuilder{
		payload: map[string]any{
			"group":            groupID,
			"valid_from":       now.Format(time.RFC3339Nano),
			"valid_to":         tomorrow.Format(time.RFC3339Nano),
			"is_reusable":      true,
			"max_use":          5,
			"customer_max_use": 2,
			"custom_code":      fmt.Sprintf("TEST-%d", now.UnixMilli()),
			"detail":           "Test Coupon",
			"quantity":         1,
			"discount_type":    "amount",
			"amount":           10,
			"type":             "ppv-live",
			"type_code":        "test_discount",
			"payment_required": false,
			"metadata":         map[string]any{"test": true},
		},
	}
}

// WithCode sets the custom coupon code.
func (b *CouponPayloadBuilder) WithCode(code string) *CouponPayloadBuilder {
	b.payload["custom_code"] = code
	return b
}

// WithAmount sets the discount amount.
func (b *CouponPayloadBuilder) WithAmount(amount int) *CouponPayloadBuilder {
	b.payload["amount"] = amount
	return b
}

// With merges arbitrary caller fields over the defaults.
func (b *CouponPayloadBuilder) With(overrides map[string]any) *CouponPayloadBuilder {
	b.payload = MergePayload(b.payload, overrides)
	return b
}

// Build returns the completed coupon payload.
func (b *CouponPayloadBuilder) Build() map[string]any {
	return deepCopy(b.payload)
}

// MergePayload returns defaults with overrides applied on top. Nested objects
// are merged key by key, everything else (including empty values and slices)
// is replaced. Neither input is modified.
func MergePayload(defaults, overrides map[string]any) map[string]any {
	out := deepCopy(defaults)

	for k, v := range overrides {
		nested, isMap := v.(map[string]any)
		current, hasMap := out[k].(map[string]any)

		if isMap && hasMap {
			out[k] = MergePayload(current, nested)
			continue
		}

		if isMap {
			out[k] = deepCopy(nested)
			continue
		}

		out[k] = v
	}

	return out
}

func deepCopy(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))

	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopy(nested)
			continue
		}

		out[k] = v
	}

	return out
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}
