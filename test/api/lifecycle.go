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
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/spjmurray/go-util/pkg/set"

	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	DefaultIndexTimeout  = 7 * time.Second
	DefaultIndexInterval = 500 * time.Millisecond
)

// ResourceState tracks a managed resource: uncreated, created, optionally
// indexed, then released. Released is terminal.
type ResourceState int32

const (
	StateUncreated ResourceState = iota
	StateCreated
	StateIndexed
	StateReleased
)

func (s ResourceState) String() string {
	switch s {
	case StateUncreated:
		return "uncreated"
	case StateCreated:
		return "created"
	case StateIndexed:
		return "indexed"
	case StateReleased:
		return "released"
	}

	return fmt.Sprintf("ResourceState(%d)", int32(s))
}

// ResourceHandle identifies a record created by a test.
type ResourceHandle struct {
	Kind string
	ID   string
	// Data is the record as returned by the create call.
	Data  Value
	state atomic.Int32
}

func (h *ResourceHandle) State() ResourceState {
	return ResourceState(h.state.Load())
}

func (h *ResourceHandle) setState(state ResourceState) {
	h.state.Store(int32(state))
}

// ReleaseFunc deletes a resource.
type ReleaseFunc func(ctx context.Context) error

type registration struct {
	handle  *ResourceHandle
	release ReleaseFunc
}

// ResourceSpec describes how to create and delete one kind of resource.
type ResourceSpec struct {
	Kind     string
	Endpoint string
	// Defaults are overlaid with Overrides to build the create payload.
	Defaults  map[string]any
	Overrides map[string]any
	// ResultPath locates the created record in the response, "data" when empty.
	ResultPath     string
	DeleteEndpoint func(id string) string
}

// IndexLookup is the listing query expected to surface a resource.
type IndexLookup struct {
	Endpoint string
	Query    *Query
}

// WaitOptions is the polling budget for WaitUntilIndexed. The first lookup
// is immediate, then one per Interval until Timeout has elapsed.
type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// WaitBudget expresses a budget as a number of attempts at a fixed interval.
func WaitBudget(attempts int, interval time.Duration) WaitOptions {
	return WaitOptions{
		Timeout:  time.Duration(attempts) * interval,
		Interval: interval,
	}
}

// ResourceManager owns the resources created in one test scope and deletes
// them, newest first, when the scope ends. Create one per test.
type ResourceManager struct {
	client    Requester
	endpoints *Endpoints

	lock          sync.Mutex
	registrations []registration
	released      bool
}

func NewResourceManager(client Requester) *ResourceManager {
	return &ResourceManager{
		client:    client,
		endpoints: NewEndpoints(),
	}
}

// ManageResources returns a manager whose resources are released by Ginkgo
// after the current spec, on success and failure alike.
func ManageResources(client Requester) *ResourceManager {
	m := NewResourceManager(client)

	ginkgo.DeferCleanup(func(ctx ginkgo.SpecContext) {
		m.ReleaseAll(ctx)
	})

	return m
}

// ManageResourcesT is ManageResources for plain Go tests.
func ManageResourcesT(t testing.TB, client Requester) *ResourceManager {
	t.Helper()

	m := NewResourceManager(client)

	// The test context is already cancelled when cleanups run.
	t.Cleanup(func() {
		m.ReleaseAll(context.Background())
	})

	return m
}

// Run executes body and then releases everything registered, even when the
// body returns an error or panics (as failed Ginkgo assertions do).
func (m *ResourceManager) Run(ctx context.Context, body func(ctx context.Context) error) error {
	defer m.ReleaseAll(context.WithoutCancel(ctx))

	return body(ctx)
}

// Register records how to delete a resource created elsewhere. Registering on
// a released scope deletes the resource straight away and fails.
func (m *ResourceManager) Register(ctx context.Context, handle *ResourceHandle, release ReleaseFunc) error {
	m.lock.Lock()

	if m.released {
		m.lock.Unlock()

		m.release(ctx, registration{handle: handle, release: release})

		return fmt.Errorf("%w: %s %s", ErrScopeReleased, handle.Kind, handle.ID)
	}

	if handle.State() == StateUncreated {
		handle.setState(StateCreated)
	}

	m.registrations = append(m.registrations, registration{handle: handle, release: release})
	m.lock.Unlock()

	return nil
}

// Handles returns the registered resources in creation order.
func (m *ResourceManager) Handles() []*ResourceHandle {
	m.lock.Lock()
	defer m.lock.Unlock()

	out := make([]*ResourceHandle, len(m.registrations))
	for i := range m.registrations {
		out[i] = m.registrations[i].handle
	}

	return out
}

func (m *ResourceManager) isReleased() bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.released
}

// Create submits a resource and registers its deletion. The create call must
// answer 200 or 201 with a record carrying an identifier.
func (m *ResourceManager) Create(ctx context.Context, spec ResourceSpec) (*ResourceHandle, error) {
	if m.isReleased() {
		return nil, fmt.Errorf("%w: cannot create %s", ErrScopeReleased, spec.Kind)
	}

	resultPath := spec.ResultPath
	if resultPath == "" {
		resultPath = "data"
	}

	resp, err := m.client.Do(ctx, &Request{
		Method:   http.MethodPost,
		Endpoint: spec.Endpoint,
		JSON:     MergePayload(spec.Defaults, spec.Overrides),
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", spec.Kind, err)
	}

	record := resp.Data.Get(resultPath)

	if (resp.Status != http.StatusOK && resp.Status != http.StatusCreated) || record.Kind() != KindObject {
		return nil, fmt.Errorf("%w: could not create %s: status=%d", ErrResourceCreation, spec.Kind, resp.Status)
	}

	id := record.ID()
	if id == "" {
		return nil, fmt.Errorf("%w: could not create %s: status=%d, record has no identifier", ErrResourceCreation, spec.Kind, resp.Status)
	}

	handle := &ResourceHandle{
		Kind: spec.Kind,
		ID:   id,
		Data: record,
	}

	deleteEndpoint := spec.DeleteEndpoint(id)

	release := func(ctx context.Context) error {
		_, err := m.client.Do(ctx, &Request{Method: http.MethodDelete, Endpoint: deleteEndpoint})
		return err
	}

	if err := m.Register(ctx, handle, release); err != nil {
		return nil, err
	}

	log.FromContext(ctx).Info("created resource", "kind", spec.Kind, "id", id)

	return handle, nil
}

// CreateMedia creates a media record from the default test payload with the
// given fields overridden.
func (m *ResourceManager) CreateMedia(ctx context.Context, overrides map[string]any) (*ResourceHandle, error) {
	return m.Create(ctx, ResourceSpec{
		Kind:           "media",
		Endpoint:       m.endpoints.CreateMedia(),
		Defaults:       NewMediaPayload().Build(),
		Overrides:      overrides,
		ResultPath:     "data",
		DeleteEndpoint: m.endpoints.DeleteMedia,
	})
}

// CreateCoupon creates a coupon in a group. The API answers with a list
// holding the new coupon.
func (m *ResourceManager) CreateCoupon(ctx context.Context, groupID string, overrides map[string]any) (*ResourceHandle, error) {
	return m.Create(ctx, ResourceSpec{
		Kind:           "coupon",
		Endpoint:       m.endpoints.CreateCoupon(),
		Defaults:       NewCouponPayload(groupID).Build(),
		Overrides:      overrides,
		ResultPath:     "data.0",
		DeleteEndpoint: m.endpoints.DeleteCoupon,
	})
}

// WaitUntilIndexed polls a listing until the handle's record shows up in its
// data. A budget that runs out yields an *IndexTimeoutError; lookup failures
// are returned as they are; cancelling ctx stops the wait. The budget is only
// checked between lookups, an in-flight lookup is never cut short by it.
func (m *ResourceManager) WaitUntilIndexed(ctx context.Context, handle *ResourceHandle, lookup IndexLookup, opts WaitOptions) error {
	if state := handle.State(); state == StateReleased || state == StateUncreated {
		return fmt.Errorf("cannot wait for %s %s in state %s", handle.Kind, handle.ID, state)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultIndexTimeout
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultIndexInterval
	}

	log := log.FromContext(ctx)

	var (
		attempts  int
		lookupErr error
	)

	start := time.Now()

	err := wait.PollUntilContextTimeout(ctx, opts.Interval, opts.Timeout, true, func(context.Context) (bool, error) {
		attempts++

		resp, err := m.client.Do(ctx, &Request{Method: http.MethodGet, Endpoint: lookup.Endpoint, Query: lookup.Query})
		if err != nil {
			lookupErr = err
			return false, err
		}

		items := resp.Items()
		ids := make([]string, 0, len(items))

		for _, item := range items {
			ids = append(ids, item.ID())
		}

		found := set.New[string](ids...).Contains(handle.ID)

		log.V(1).Info("index lookup", "kind", handle.Kind, "id", handle.ID, "attempt", attempts, "results", len(items), "found", found)

		return found, nil
	})

	switch {
	case err == nil:
		handle.setState(StateIndexed)

		return nil
	case lookupErr != nil:
		return fmt.Errorf("looking up %s %s: %w", handle.Kind, handle.ID, lookupErr)
	case ctx.Err() != nil:
		return fmt.Errorf("waiting for %s %s: %w", handle.Kind, handle.ID, ctx.Err())
	case wait.Interrupted(err):
		return &IndexTimeoutError{
			Kind:     handle.Kind,
			ID:       handle.ID,
			Attempts: attempts,
			Elapsed:  time.Since(start),
		}
	}

	return fmt.Errorf("waiting for %s %s: %w", handle.Kind, handle.ID, err)
}

// ReleaseAll deletes every registered resource, newest first. It runs once
// per scope, later calls do nothing. Failures are logged and never returned:
// a cleanup problem must not change the outcome of the test that owns it.
func (m *ResourceManager) ReleaseAll(ctx context.Context) {
	m.lock.Lock()

	if m.released {
		m.lock.Unlock()
		return
	}

	m.released = true
	registrations := m.registrations
	m.registrations = nil
	m.lock.Unlock()

	for i := len(registrations) - 1; i >= 0; i-- {
		m.release(ctx, registrations[i])
	}
}

func (m *ResourceManager) release(ctx context.Context, r registration) {
	log := log.FromContext(ctx)

	log.Info("releasing resource", "kind", r.handle.Kind, "id", r.handle.ID)

	if err := safeRelease(ctx, r.release); err != nil {
		log.Error(err, "failed to release resource", "kind", r.handle.Kind, "id", r.handle.ID)
	}

	r.handle.setState(StateReleased)
}

func safeRelease(ctx context.Context, release ReleaseFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(err, fmt.Errorf("release panicked: %v", r))
		}
	}()

	return release(ctx)
}
