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
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sync/errgroup"

	"github.com/nscaledev/media-api-tests/test/api"
)

var _ = Describe("Concurrency and Performance", func() {
	Context("When performing concurrent operations", func() {
		It("should create media concurrently with unique identifiers", func(ctx SpecContext) {
			manager := api.ManageResources(client)

			const count = 5

			var (
				lock sync.Mutex
				ids  []string
			)

			group, groupCtx := errgroup.WithContext(ctx)

			for range count {
				group.Go(func() error {
					media, err := manager.CreateMedia(groupCtx, nil)
					if err != nil {
						return err
					}

					lock.Lock()
					ids = append(ids, media.ID)
					lock.Unlock()

					return nil
				})
			}

			Expect(group.Wait()).To(Succeed())
			Expect(ids).To(HaveLen(count))
			Expect(manager.Handles()).To(HaveLen(count))

			unique := map[string]struct{}{}
			for _, id := range ids {
				unique[id] = struct{}{}
			}

			Expect(unique).To(HaveLen(count))
		})

		It("should serve concurrent listings consistently", func(ctx SpecContext) {
			repo := api.NewMediaRepo(client)
			query := api.NewQuery("sort", "title", "limit", 5)

			group, groupCtx := errgroup.WithContext(ctx)
			results := make([][]api.Value, 4)

			for i := range results {
				group.Go(func() error {
					resp, err := repo.List(groupCtx, query)
					if err != nil {
						return err
					}

					results[i] = resp.Items()

					return nil
				})
			}

			Expect(group.Wait()).To(Succeed())

			for _, items := range results {
				Expect(len(items)).To(BeNumerically("<=", 5))
			}
		})
	})

	Context("When measuring response times", func() {
		It("should list media within the request timeout", func() {
			resp, err := api.NewMediaRepo(client).List(ctx, api.NewQuery("limit", 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Duration).To(BeNumerically("<", config.RequestTimeout))
		})
	})
})
