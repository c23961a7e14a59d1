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

var _ = Describe("Media Indexing", func() {
	Context("When media is created with a unique signature", func() {
		It("should become listable by a contains search", func(ctx SpecContext) {
			media, signature := api.CreateIndexedMediaWithCleanup(client, ctx, config)
			Expect(media.State()).To(Equal(api.StateIndexed))

			repo := api.NewMediaRepo(client)

			resp, err := repo.List(ctx, repo.ContainsLookup(signature, 10).Query)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(http.StatusOK))

			items := resp.Items()
			api.VerifyMediaPresence(items, media.ID)
			api.VerifyTitlesContain(items, signature)
		})

		It("should be found by its id once listed", func(ctx SpecContext) {
			media, _ := api.CreateIndexedMediaWithCleanup(client, ctx, config)

			items, err := api.NewMediaRepo(client).Find(ctx, media.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			api.VerifyMediaPresence(items, media.ID)
		})
	})
})
