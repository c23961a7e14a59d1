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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	"net/http"
	"slices"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/media-api-tests/test/api"
)

func ids(items []api.Value) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID()
	}

	return out
}

var _ = Describe("Media Listing", func() {
	var repo *api.MediaRepo

	BeforeEach(func() {
		repo = api.NewMediaRepo(client)
	})

	Context("When listing media without parameters", func() {
		It("should return a non empty list in the standard envelope", func() {
			resp, err := repo.List(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(resp.Data.Get("status").String()).To(Equal("OK"))
			Expect(resp.Data.Get("data").Kind()).To(Equal(api.KindArray))
			Expect(resp.Items()).NotTo(BeEmpty())
			Expect(api.ValidateSchema(api.SchemaMediaList, resp.Data)).To(Succeed())
		})
	})

	Context("When paginating", func() {
		It("should not repeat media across consecutive pages", func() {
			first, err := repo.List(ctx, api.NewQuery("sort", "title", "limit", 5, "skip", 0))
			Expect(err).NotTo(HaveOccurred())

			second, err := repo.List(ctx, api.NewQuery("sort", "title", "limit", 5, "skip", 5))
			Expect(err).NotTo(HaveOccurred())

			secondIDs := ids(second.Items())

			for _, id := range ids(first.Items()) {
				Expect(secondIDs).NotTo(ContainElement(id))
			}
		})
	})

	Context("When counting", func() {
		It("should answer count=true with a number", func() {
			resp, err := repo.List(ctx, api.NewQuery("limit", 7, "count", true))
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(resp.Data.Get("data").Kind()).To(Equal(api.KindNumber))

			if count := resp.Data.Get("count"); count.Exists() {
				Expect(count.Kind()).To(Equal(api.KindNumber))
			}

			Expect(api.ValidateSchema(api.SchemaCount, resp.Data)).To(Succeed())
		})
	})

	Context("When searching for an existing media", func() {
		var sample *api.MediaSample

		BeforeEach(func() {
			sample = api.RandomMediaFixture(client, ctx)
		})

		It("should find exactly that media by id", func() {
			items, err := repo.Find(ctx, sample.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(items).To(HaveLen(1))
			Expect(items[0].First("id", "_id").String()).To(Equal(sample.ID))
		})

		It("should match the query against titles, case insensitively", func() {
			if sample.TitleWord == "" {
				Skip("sampled media has no searchable title word")
			}

			resp, err := repo.List(ctx, api.NewQuery("query", sample.TitleWord, "limit", 10))
			Expect(err).NotTo(HaveOccurred())

			items := resp.Items()
			Expect(items).NotTo(BeEmpty())
			api.VerifyTitlesContain(items, sample.TitleWord)
		})
	})

	Context("When sorting by creation date", func() {
		It("should honour ascending and descending order", func() {
			asc, err := repo.List(ctx, api.NewQuery("sort", "date_created", "limit", 10))
			Expect(err).NotTo(HaveOccurred())

			desc, err := repo.List(ctx, api.NewQuery("sort", "-date_created", "limit", 10))
			Expect(err).NotTo(HaveOccurred())

			api.VerifyCreationOrder(asc.Items(), false)
			api.VerifyCreationOrder(desc.Items(), true)
		})
	})

	Context("When filtering", func() {
		It("should only return published audio for type=audio and published=true", func() {
			resp, err := repo.List(ctx, api.NewQuery("type", "audio", "published", true, "limit", 10))
			Expect(err).NotTo(HaveOccurred())

			for _, item := range resp.Items() {
				Expect(item.Get("type").String()).To(Equal("audio"))
				Expect(item.First("published", "is_published").Bool()).To(BeTrue())
			}
		})

		It("should only return video for type=video", func() {
			resp, err := repo.List(ctx, api.NewQuery("type", "video", "limit", 10))
			Expect(err).NotTo(HaveOccurred())

			for _, item := range resp.Items() {
				Expect(item.Get("type").String()).To(Equal("video"))
			}
		})

		It("should respect a creation date range", func() {
			after := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			before := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

			resp, err := repo.List(ctx, api.NewQuery(
				"created_after", after.Format(time.RFC3339Nano),
				"created_before", before.Format(time.RFC3339Nano),
				"limit", 5,
			))
			Expect(err).NotTo(HaveOccurred())

			api.VerifyCreatedBetween(resp.Items(), after, before)
		})

		It("should only return uncategorised media for without_category", func() {
			resp, err := repo.List(ctx, api.NewQuery("without_category", true))
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Data.Get("status").String()).To(Equal("OK"))
			Expect(resp.Data.Get("data").Kind()).To(Equal(api.KindArray))

			for _, item := range resp.Items() {
				categories := item.Get("categories")
				Expect(slices.Contains([]api.Kind{api.KindNull, api.KindArray}, categories.Kind())).To(BeTrue())
				Expect(categories.Array()).To(BeEmpty(), "media %s has categories", item.ID())
			}
		})
	})
})
