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

// Package api provides end-to-end test utilities for the media and coupon API.
//
// # Request Client
//
// APIClient is the single way tests talk to the remote service. It owns the
// base endpoint and token for a run, injects credentials into every call,
// builds query strings, parses responses into a Value and turns every
// transport or protocol failure into a *ClientError. Status codes below 400
// are never treated as failures here: response shape is the caller's concern.
//
// # Resource Lifecycle
//
// ResourceManager creates ephemeral records (media, coupons) through the
// client, waits for them to show up in listings where the backing store
// indexes asynchronously, and deletes everything it created in reverse order
// once the test body returns, whether it passed or failed. Use
// ManageResources inside Ginkgo specs and ManageResourcesT in plain tests.
//
// # Configuration
//
// Configuration comes from the environment and an optional .env file, see
// LoadTestConfig. API_BASE_URL and API_TOKEN are required; a client cannot be
// constructed without them.
package api
