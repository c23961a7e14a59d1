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
	"context"
	"fmt"
	"net/http"
)

// CouponRepo wraps the coupon endpoints.
type CouponRepo struct {
	client    Requester
	endpoints *Endpoints
}

func NewCouponRepo(client Requester) *CouponRepo {
	return &CouponRepo{
		client:    client,
		endpoints: NewEndpoints(),
	}
}

func (r *CouponRepo) List(ctx context.Context, query *Query) (*Response, error) {
	resp, err := r.client.Do(ctx, &Request{Method: http.MethodGet, Endpoint: r.endpoints.ListCoupons(), Query: query})
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}

	return resp, nil
}

// CouponSummary is the coupon data the coupon suites start from.
type CouponSummary struct {
	Coupons []Value
	// Reusable is a coupon that is both reusable and valid, if any.
	Reusable Value
	// Used is a coupon that has been redeemed, if any.
	Used       Value
	GroupID    string
	CouponID   string
	CouponCode string
	// Created is set when no reusable coupon existed and one was created.
	Created *ResourceHandle
}

// Summarize lists the first limit coupons and picks out the useful ones.
// When no reusable coupon exists but a group is known, a reusable coupon is
// created through manager and released with the manager's scope.
func (r *CouponRepo) Summarize(ctx context.Context, manager *ResourceManager, limit int) (*CouponSummary, error) {
	resp, err := r.List(ctx, NewQuery("limit", limit))
	if err != nil {
		return nil, err
	}

	summary := &CouponSummary{
		Coupons: resp.Items(),
	}

	for _, coupon := range summary.Coupons {
		if !summary.Reusable.Exists() && coupon.Get("is_reusable").Bool() && coupon.Get("is_valid").Bool() {
			summary.Reusable = coupon
		}

		if !summary.Used.Exists() && coupon.Get("is_used").Bool() {
			summary.Used = coupon
		}
	}

	var first Value
	if len(summary.Coupons) > 0 {
		first = summary.Coupons[0]
	}

	// Each field falls back to the first coupon on its own.
	summary.GroupID = firstNonEmpty(summary.Reusable.Get("group._id").String(), first.Get("group._id").String())
	summary.CouponID = firstNonEmpty(summary.Reusable.Get("_id").String(), first.Get("_id").String())
	summary.CouponCode = firstNonEmpty(summary.Reusable.Get("code").String(), first.Get("code").String())

	if !summary.Reusable.Exists() && summary.GroupID != "" && manager != nil {
		created, err := manager.CreateCoupon(ctx, summary.GroupID, nil)
		if err != nil {
			return nil, err
		}

		summary.Created = created
	}

	return summary, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
