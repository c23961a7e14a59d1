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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// CreateMediaWithCleanup creates media from the default payload with the
// given overrides. Deletion is scheduled with Ginkgo, so it runs whether the
// spec passes or fails.
func CreateMediaWithCleanup(client Requester, ctx context.Context, overrides map[string]any) *ResourceHandle {
	GinkgoHelper()

	media, err := ManageResources(client).CreateMedia(ctx, overrides)
	Expect(err).NotTo(HaveOccurred())

	GinkgoWriter.Printf("Created media with ID: %s\n", media.ID)

	return media
}

// CreateIndexedMediaWithCleanup creates media titled with a unique signature
// and waits for it to be listed by a contains search on that signature.
func CreateIndexedMediaWithCleanup(client Requester, ctx context.Context, config *TestConfig) (*ResourceHandle, string) {
	GinkgoHelper()

	signature := Signature("fixture")
	manager := ManageResources(client)

	media, err := manager.CreateMedia(ctx, map[string]any{"title": signature + " video"})
	Expect(err).NotTo(HaveOccurred())

	GinkgoWriter.Printf("Waiting up to %s for media %s to be listed\n", config.IndexTimeout, media.ID)

	Expect(manager.WaitUntilIndexed(ctx, media, NewMediaRepo(client).ContainsLookup(signature, 10), WaitOptions{
		Timeout:  config.IndexTimeout,
		Interval: config.IndexInterval,
	})).To(Succeed())

	return media, signature
}

// RandomMediaFixture picks existing media to search for, skipping the spec
// when the deployment has none.
func RandomMediaFixture(client Requester, ctx context.Context) *MediaSample {
	GinkgoHelper()

	sample, err := NewMediaRepo(client).RandomMedia(ctx, 50)
	if errors.Is(err, ErrNoMedia) {
		Skip("no media available")
	}

	Expect(err).NotTo(HaveOccurred())

	return sample
}

// CouponsFixture summarizes the deployment's coupons, creating a reusable
// coupon (deleted after the spec) when none exists.
func CouponsFixture(client Requester, ctx context.Context) *CouponSummary {
	GinkgoHelper()

	summary, err := NewCouponRepo(client).Summarize(ctx, ManageResources(client), 10)
	Expect(err).NotTo(HaveOccurred())

	return summary
}

// VerifyMediaPresence verifies that media are present in a listing.
func VerifyMediaPresence(items []Value, expectedIDs ...string) {
	GinkgoHelper()

	ids := extractIDs(items)
	for _, expectedID := range expectedIDs {
		Expect(ids).To(ContainElement(expectedID), "Expected media ID %s to be present in the list", expectedID)
	}
}

// VerifyTitlesContain verifies that every listed title contains word,
// ignoring case.
func VerifyTitlesContain(items []Value, word string) {
	GinkgoHelper()

	for _, item := range items {
		title := item.Get("title")
		Expect(title.Kind()).To(Equal(KindString), "media %s has no title", item.ID())
		Expect(strings.ToLower(title.String())).To(ContainSubstring(strings.ToLower(word)))
	}
}

// VerifyCreationOrder verifies that a listing is ordered by date_created.
func VerifyCreationOrder(items []Value, descending bool) {
	GinkgoHelper()

	for i := 1; i < len(items); i++ {
		previous, current := createdAt(items[i-1]), createdAt(items[i])

		if descending {
			Expect(previous.Before(current)).To(BeFalse(), "media %s listed before older media %s", items[i-1].ID(), items[i].ID())
		} else {
			Expect(previous.After(current)).To(BeFalse(), "media %s listed before newer media %s", items[i-1].ID(), items[i].ID())
		}
	}
}

// VerifyCreatedBetween verifies that every listed record was created inside
// the range.
func VerifyCreatedBetween(items []Value, after, before time.Time) {
	GinkgoHelper()

	for _, item := range items {
		created := createdAt(item)
		Expect(created.Before(after)).To(BeFalse(), "media %s created %s, before %s", item.ID(), created, after)
		Expect(created.After(before)).To(BeFalse(), "media %s created %s, after %s", item.ID(), created, before)
	}
}

// extractIDs extracts identifiers from a list of records.
func extractIDs(items []Value) []string {
	ids := make([]string, len(items))

	for i, item := range items {
		ids[i] = item.ID()
	}

	return ids
}

func createdAt(item Value) time.Time {
	GinkgoHelper()

	created, err := time.Parse(time.RFC3339Nano, item.Get("date_created").String())
	Expect(err).NotTo(HaveOccurred(), "media %s has an unparsable date_created", item.ID())

	return created
}
