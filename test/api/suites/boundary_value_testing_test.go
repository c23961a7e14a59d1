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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/media-api-tests/test/api"
)

var _ = Describe("Boundary Value Testing", func() {
	var repo *api.MediaRepo

	BeforeEach(func() {
		repo = api.NewMediaRepo(client)
	})

	Context("When paging through media", func() {
		DescribeTable("should never return more than the limit",
			func(limit int) {
				resp, err := repo.List(ctx, api.NewQuery("limit", limit))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Status).To(Equal(http.StatusOK))
				Expect(len(resp.Items())).To(BeNumerically("<=", limit))
			},
			Entry("minimum", 1),
			Entry("small page", 5),
			Entry("large page", 100),
		)

		It("should return an empty page beyond the last record", func() {
			count, err := repo.Count(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := repo.List(ctx, api.NewQuery("skip", count+1000, "limit", 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Items()).To(BeEmpty())
		})
	})

	Context("When creating media with boundary strings", func() {
		It("should accept a long title", func(ctx SpecContext) {
			manager := api.ManageResources(client)

			title := api.Signature("long")
			for len(title) < 255 {
				title += "x"
			}

			media, err := manager.CreateMedia(ctx, map[string]any{"title": title})
			Expect(err).NotTo(HaveOccurred())
			Expect(media.Data.Get("title").String()).To(Equal(title))
		})

		It("should accept an empty description", func(ctx SpecContext) {
			manager := api.ManageResources(client)

			media, err := manager.CreateMedia(ctx, map[string]any{"description": ""})
			Expect(err).NotTo(HaveOccurred())
			Expect(media.Data.Get("description").String()).To(BeEmpty())
		})
	})
})
