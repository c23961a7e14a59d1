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

// Package fake provides an in-process media and coupon API for exercising the
// test harness without a live deployment. Listings only show records once
// their indexing delay has passed, mimicking the asynchronous search index of
// the real service.
package fake

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Call is a request observed by the server.
type Call struct {
	Method  string
	Path    string
	Query   string
	Header  http.Header
	Body    string
	Started time.Time
}

type record struct {
	fields    map[string]any
	visibleAt time.Time
	meta      []map[string]any
}

// Server is a fake media API. The zero value is not usable, use New.
type Server struct {
	// Token is the only token accepted, in the query, the X-API-Token header
	// or the X-API-KEY header used by the video management service.
	Token string
	// IndexDelay is how long a new record stays out of listings.
	IndexDelay time.Duration
	// OmitCreatedRecord makes creates succeed without returning the record.
	OmitCreatedRecord bool

	lock       sync.Mutex
	media      map[string]*record
	mediaOrder []string
	coupons    map[string]*record
	// couponOrder lists coupons oldest first, the order listings use.
	couponOrder []string
	jobs        map[string]string
	calls       []Call
	deleted     []string
	failDelete  map[string]int

	router *chi.Mux
	server *httptest.Server
}

// New starts a fake API that accepts token.
func New(token string) *Server {
	s := &Server{
		Token:      token,
		media:      map[string]*record{},
		coupons:    map[string]*record{},
		jobs:       map[string]string{},
		failDelete: map[string]int{},
	}

	s.router = chi.NewRouter()
	s.router.Use(s.record, s.authenticate)

	s.router.Route("/api/media", func(r chi.Router) {
		r.Get("/", s.listMedia)
		r.Post("/", s.createMedia)
		r.Get("/upload", s.upload)
		r.Get("/{mediaID}", s.getMedia)
		r.Post("/{mediaID}", s.updateMedia)
		r.Delete("/{mediaID}", s.deleteMedia)
		r.Get("/{mediaID}/meta", s.listMeta)
		r.Delete("/{mediaID}/meta/{metaID}", s.deleteMeta)
		r.Post("/{mediaID}/meta/{metaID}", s.transcodeMeta)
	})

	s.router.Route("/api/coupon", func(r chi.Router) {
		r.Get("/", s.listCoupons)
		r.Post("/", s.createCoupon)
		r.Delete("/{couponID}", s.deleteCoupon)
	})

	s.router.Get("/job-details", s.jobDetails)

	s.server = httptest.NewServer(s.router)

	return s
}

func (s *Server) URL() string {
	return s.server.URL
}

func (s *Server) Close() {
	s.server.Close()
}

// FailDelete makes deletes of id answer with status.
func (s *Server) FailDelete(id string, status int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.failDelete[id] = status
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.lock.Lock()
	defer s.lock.Unlock()

	return slices.Clone(s.calls)
}

// CallsTo returns the requests with the given method whose path starts with
// prefix.
func (s *Server) CallsTo(method, prefix string) []Call {
	var out []Call

	for _, call := range s.Calls() {
		if call.Method == method && strings.HasPrefix(call.Path, prefix) {
			out = append(out, call)
		}
	}

	return out
}

// Deleted returns the identifiers of delete attempts, in arrival order,
// including ones that were made to fail.
func (s *Server) Deleted() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return slices.Clone(s.deleted)
}

// MediaCount returns the number of stored media records, indexed or not.
func (s *Server) MediaCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.media)
}

// SeedMedia stores an already indexed media record and returns its id.
func (s *Server) SeedMedia(fields map[string]any) string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.addMedia(fields, time.Now())
}

// SeedCoupon stores a coupon and returns its id.
func (s *Server) SeedCoupon(fields map[string]any) string {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := uuid.NewString()
	fields["_id"] = id
	s.coupons[id] = &record{fields: fields}
	s.couponOrder = append(s.couponOrder, id)

	return id
}

func (s *Server) addMedia(fields map[string]any, visibleAt time.Time) string {
	id := uuid.NewString()

	fields["_id"] = id
	if _, ok := fields["date_created"]; !ok {
		fields["date_created"] = time.Now().UTC().Format(time.RFC3339Nano)
	}

	s.media[id] = &record{
		fields:    fields,
		visibleAt: visibleAt,
		meta: []map[string]any{
			{"_id": id + "-original", "is_original": true, "status": "DONE", "label": "original"},
			{"_id": id + "-720p", "is_original": false, "status": "DONE", "label": "720p"},
		},
	}
	s.mediaOrder = append(s.mediaOrder, id)

	return id
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte

		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.lock.Lock()
		s.calls = append(s.calls, Call{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Header:  r.Header.Clone(),
			Body:    string(body),
			Started: time.Now(),
		})
		s.lock.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != s.Token && r.Header.Get("X-API-Token") != s.Token && r.Header.Get("X-API-KEY") != s.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}

		w.Header().Set("X-Request-Id", uuid.NewString())

		next.ServeHTTP(w, r)
	})
}

//nolint:cyclop // filter handling mirrors the real listing endpoint
func (s *Server) listMedia(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	now := time.Now()

	s.lock.Lock()

	var items []map[string]any

	for _, id := range s.mediaOrder {
		media, ok := s.media[id]
		if !ok || now.Before(media.visibleAt) {
			continue
		}

		if !matches(media.fields, query) {
			continue
		}

		items = append(items, maps.Clone(media.fields))
	}

	s.lock.Unlock()

	if query.Get("count") == "true" {
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": len(items)})
		return
	}

	if sortKey := query.Get("sort"); sortKey != "" {
		sortItems(items, sortKey)
	}

	skip, _ := strconv.Atoi(query.Get("skip"))
	if skip > len(items) {
		skip = len(items)
	}

	items = items[skip:]

	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit >= 0 && limit < len(items) {
		items = items[:limit]
	}

	if items == nil {
		items = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": items})
}

func matches(fields map[string]any, query map[string][]string) bool {
	get := func(key string) string {
		if values := query[key]; len(values) > 0 {
			return values[0]
		}

		return ""
	}

	if id := get("id"); id != "" && fields["_id"] != id {
		return false
	}

	title, _ := fields["title"].(string)

	if want := get("title"); want != "" {
		if get("title-rule") == "equals" {
			if title != want {
				return false
			}
		} else if !strings.Contains(strings.ToLower(title), strings.ToLower(want)) {
			return false
		}
	}

	if want := get("query"); want != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(want)) {
		return false
	}

	return true
}

func sortItems(items []map[string]any, key string) {
	descending := strings.HasPrefix(key, "-")
	key = strings.TrimPrefix(key, "-")

	slices.SortStableFunc(items, func(a, b map[string]any) int {
		av, _ := a[key].(string)
		bv, _ := b[key].(string)

		if descending {
			return strings.Compare(bv, av)
		}

		return strings.Compare(av, bv)
	})
}

func (s *Server) createMedia(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any

	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}

	if title, _ := fields["title"].(string); title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "title is required"})
		return
	}

	s.lock.Lock()
	s.addMedia(fields, time.Now().Add(s.IndexDelay))
	fields = maps.Clone(fields)
	s.lock.Unlock()

	if s.OmitCreatedRecord {
		writeJSON(w, http.StatusCreated, map[string]any{"status": "OK"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"status": "OK", "data": fields})
}

func (s *Server) getMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mediaID")

	s.lock.Lock()

	var fields map[string]any
	if media, ok := s.media[id]; ok {
		fields = maps.Clone(media.fields)
	}

	s.lock.Unlock()

	if fields == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": fields})
}

func (s *Server) updateMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mediaID")

	var update map[string]any

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	media, ok := s.media[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}

	for k, v := range update {
		if k != "_id" {
			media.fields[k] = v
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": media.fields})
}

func (s *Server) deleteMedia(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, chi.URLParam(r, "mediaID"), s.media)
}

func (s *Server) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, chi.URLParam(r, "couponID"), s.coupons)
}

func (s *Server) deleteRecord(w http.ResponseWriter, id string, records map[string]*record) {
	s.lock.Lock()

	s.deleted = append(s.deleted, id)

	if status, ok := s.failDelete[id]; ok {
		s.lock.Unlock()
		writeJSON(w, status, map[string]any{"error": "delete failed"})

		return
	}

	_, ok := records[id]
	delete(records, id)
	s.lock.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK"})
}

func (s *Server) listCoupons(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()

	items := make([]map[string]any, 0, len(s.coupons))
	for _, id := range s.couponOrder {
		if coupon, ok := s.coupons[id]; ok {
			items = append(items, maps.Clone(coupon.fields))
		}
	}

	s.lock.Unlock()

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(items) {
		items = items[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": items})
}

func (s *Server) createCoupon(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any

	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}

	if code, ok := fields["custom_code"].(string); ok {
		fields["code"] = code
	}

	fields["is_valid"] = true
	fields["is_used"] = false

	s.SeedCoupon(fields)

	s.lock.Lock()
	fields = maps.Clone(fields)
	s.lock.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"status": "OK", "data": []any{fields}})
}

// JobStatus returns the status reported for an upload job, empty if unknown.
func (s *Server) JobStatus(jobID string) string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.jobs[jobID]
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mediaID := query.Get("media_id")

	if query.Get("type") != "remote" || query.Get("fileUrl") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "remote uploads need type=remote and fileUrl"})
		return
	}

	s.lock.Lock()

	if _, ok := s.media[mediaID]; !ok {
		s.lock.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "media not found"})

		return
	}

	jobID := uuid.NewString()
	s.jobs[jobID] = "DONE"
	s.lock.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": map[string]any{"jobId": jobID}})
}

func (s *Server) jobDetails(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("id")

	status := s.JobStatus(jobID)
	if status == "" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "job not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"_id":       jobID,
		"workflows": []any{map[string]any{"status": status}},
	})
}

func (s *Server) listMeta(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mediaID")

	s.lock.Lock()

	media, ok := s.media[id]
	if !ok {
		s.lock.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})

		return
	}

	meta := make([]map[string]any, len(media.meta))
	for i := range media.meta {
		meta[i] = maps.Clone(media.meta[i])
	}

	s.lock.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": map[string]any{"_id": id, "meta": meta}})
}

// deleteMeta is a soft delete: the rendition stays listed with status NEW.
func (s *Server) deleteMeta(w http.ResponseWriter, r *http.Request) {
	s.setMetaStatus(w, chi.URLParam(r, "mediaID"), chi.URLParam(r, "metaID"), "NEW")
}

func (s *Server) transcodeMeta(w http.ResponseWriter, r *http.Request) {
	s.setMetaStatus(w, chi.URLParam(r, "mediaID"), chi.URLParam(r, "metaID"), "QUEUED")
}

func (s *Server) setMetaStatus(w http.ResponseWriter, mediaID, metaID, status string) {
	s.lock.Lock()

	var found map[string]any

	if media, ok := s.media[mediaID]; ok {
		for _, meta := range media.meta {
			if meta["_id"] == metaID {
				meta["status"] = status
				found = maps.Clone(meta)
			}
		}
	}

	s.lock.Unlock()

	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": found})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
