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

var _ = Describe("Error Handling and Edge Cases", func() {
	Context("When operating on resources that no longer exist", func() {
		It("should answer not found for deleted media", func(ctx SpecContext) {
			manager := api.NewResourceManager(client)
			repo := api.NewMediaRepo(client)

			media, err := manager.CreateMedia(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			manager.ReleaseAll(ctx)
			Expect(media.State()).To(Equal(api.StateReleased))

			_, err = repo.Get(ctx, media.ID)
			expectStatus(err, http.StatusNotFound, http.StatusGone, http.StatusBadRequest)
		})

		It("should answer not found when deleting unknown media", func() {
			_, err := client.Delete(ctx, api.NewEndpoints().DeleteMedia("000000000000000000000000"), nil)
			expectStatus(err, http.StatusNotFound, http.StatusBadRequest)
		})
	})

	Context("When the create payload is invalid", func() {
		It("should reject media without a title", func(ctx SpecContext) {
			manager := api.ManageResources(client)

			_, err := manager.CreateMedia(ctx, map[string]any{"title": ""})
			expectStatus(err, http.StatusBadRequest, http.StatusUnprocessableEntity)
			Expect(manager.Handles()).To(BeEmpty())
		})

		It("should reject a malformed request body", func() {
			_, err := client.Do(ctx, &api.Request{
				Method:   http.MethodPost,
				Endpoint: api.NewEndpoints().CreateMedia(),
				JSON:     []string{"not", "an", "object"},
			})
			expectStatus(err, http.StatusBadRequest, http.StatusUnprocessableEntity)
		})
	})

	Context("When the request itself is contradictory", func() {
		It("should refuse to send a JSON and a form body together", func() {
			_, err := client.Do(ctx, &api.Request{
				Method:   http.MethodPost,
				Endpoint: api.NewEndpoints().CreateMedia(),
				JSON:     map[string]any{},
				Form:     map[string][]string{"title": {"x"}},
			})
			Expect(err).To(MatchError(api.ErrConflictingBody))
		})
	})
})
