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

var _ = Describe("Coupons", func() {
	var repo *api.CouponRepo

	BeforeEach(func() {
		repo = api.NewCouponRepo(client)
	})

	Context("When listing coupons", func() {
		It("should return the standard envelope", func() {
			resp, err := repo.List(ctx, api.NewQuery("limit", 10))
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(resp.Data.Get("data").Kind()).To(Equal(api.KindArray))
			Expect(api.ValidateSchema(api.SchemaCouponList, resp.Data)).To(Succeed())
		})
	})

	Context("When a reusable coupon is needed", func() {
		It("should find or create one in a known group", func(ctx SpecContext) {
			summary := api.CouponsFixture(client, ctx)

			if summary.GroupID == "" {
				Skip("no coupon group is available")
			}

			if summary.Created != nil {
				Expect(summary.Created.Data.Get("is_reusable").Bool()).To(BeTrue())
				Expect(summary.Created.Data.ID()).To(Equal(summary.Created.ID))

				return
			}

			Expect(summary.Reusable.Get("is_reusable").Bool()).To(BeTrue())
			Expect(summary.Reusable.Get("is_valid").Bool()).To(BeTrue())
			Expect(summary.CouponCode).NotTo(BeEmpty())
		})
	})
})
