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
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Media endpoints.
func (e *Endpoints) ListMedia() string {
	return "/api/media"
}

func (e *Endpoints) CreateMedia() string {
	return "/api/media"
}

func (e *Endpoints) GetMedia(mediaID string) string {
	return fmt.Sprintf("/api/media/%s", url.PathEscape(mediaID))
}

// UpdateMedia is a POST to the media record itself.
func (e *Endpoints) UpdateMedia(mediaID string) string {
	return fmt.Sprintf("/api/media/%s", url.PathEscape(mediaID))
}

func (e *Endpoints) DeleteMedia(mediaID string) string {
	return fmt.Sprintf("/api/media/%s", url.PathEscape(mediaID))
}

func (e *Endpoints) UploadMedia() string {
	return "/api/media/upload"
}

// Media rendition ("meta") endpoints.
func (e *Endpoints) ListMediaMeta(mediaID string) string {
	return fmt.Sprintf("/api/media/%s/meta", url.PathEscape(mediaID))
}

func (e *Endpoints) MediaMeta(mediaID, metaID string) string {
	return fmt.Sprintf("/api/media/%s/meta/%s",
		url.PathEscape(mediaID), url.PathEscape(metaID))
}

// Coupon endpoints.
func (e *Endpoints) ListCoupons() string {
	return "/api/coupon"
}

func (e *Endpoints) CreateCoupon() string {
	return "/api/coupon"
}

func (e *Endpoints) DeleteCoupon(couponID string) string {
	return fmt.Sprintf("/api/coupon/%s", url.PathEscape(couponID))
}

// Video management service endpoints.
func (e *Endpoints) JobDetails() string {
	return "/job-details"
}
