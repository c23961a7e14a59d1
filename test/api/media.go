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
	"math/rand/v2"
	"net/http"
	"strings"
)

var ErrNoMedia = errors.New("no media available")

// MediaRepo wraps the media endpoints.
type MediaRepo struct {
	client    Requester
	endpoints *Endpoints
}

func NewMediaRepo(client Requester) *MediaRepo {
	return &MediaRepo{
		client:    client,
		endpoints: NewEndpoints(),
	}
}

// List returns the raw listing response so callers can assert on the
// envelope as well as the items.
func (r *MediaRepo) List(ctx context.Context, query *Query) (*Response, error) {
	resp, err := r.client.Do(ctx, &Request{Method: http.MethodGet, Endpoint: r.endpoints.ListMedia(), Query: query})
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}

	return resp, nil
}

// Count lists with count=true, which makes the API answer with a number.
func (r *MediaRepo) Count(ctx context.Context, query *Query) (int64, error) {
	resp, err := r.List(ctx, query.Clone().Set("count", true))
	if err != nil {
		return 0, err
	}

	count := resp.Data.Get("data")
	if count.Kind() != KindNumber {
		return 0, fmt.Errorf("counting media: expected a number, got %s", count.Kind())
	}

	return count.Int(), nil
}

// Get fetches a single media record.
func (r *MediaRepo) Get(ctx context.Context, mediaID string) (Value, error) {
	resp, err := r.client.Do(ctx, &Request{Method: http.MethodGet, Endpoint: r.endpoints.GetMedia(mediaID)})
	if err != nil {
		return Value{}, fmt.Errorf("getting media %s: %w", mediaID, err)
	}

	return resp.Data.Get("data"), nil
}

// Find looks a media record up by identifier through the listing filter.
func (r *MediaRepo) Find(ctx context.Context, mediaID string) ([]Value, error) {
	resp, err := r.List(ctx, NewQuery("id", mediaID))
	if err != nil {
		return nil, err
	}

	return resp.Items(), nil
}

// Update changes title/description; the API takes updates as a POST.
func (r *MediaRepo) Update(ctx context.Context, mediaID string, payload map[string]any) (*Response, error) {
	resp, err := r.client.Do(ctx, &Request{Method: http.MethodPost, Endpoint: r.endpoints.UpdateMedia(mediaID), JSON: payload})
	if err != nil {
		return nil, fmt.Errorf("updating media %s: %w", mediaID, err)
	}

	return resp, nil
}

// Meta lists the renditions of a media record.
func (r *MediaRepo) Meta(ctx context.Context, mediaID string) ([]Value, error) {
	resp, err := r.client.Do(ctx, &Request{Method: http.MethodGet, Endpoint: r.endpoints.ListMediaMeta(mediaID)})
	if err != nil {
		return nil, fmt.Errorf("listing meta for media %s: %w", mediaID, err)
	}

	return resp.Data.Get("data.meta").Array(), nil
}

// DeleteMeta soft deletes a rendition: it stays listed with status NEW.
func (r *MediaRepo) DeleteMeta(ctx context.Context, mediaID, metaID string) (*Response, error) {
	resp, err := r.client.Do(ctx, &Request{Method: http.MethodDelete, Endpoint: r.endpoints.MediaMeta(mediaID, metaID)})
	if err != nil {
		return nil, fmt.Errorf("deleting meta %s of media %s: %w", metaID, mediaID, err)
	}

	return resp, nil
}

// Transcode requests a rendition to be (re)generated.
func (r *MediaRepo) Transcode(ctx context.Context, mediaID, metaID string) (*Response, error) {
	resp, err := r.client.Do(ctx, &Request{Method: http.MethodPost, Endpoint: r.endpoints.MediaMeta(mediaID, metaID), JSON: map[string]any{}})
	if err != nil {
		return nil, fmt.Errorf("transcoding meta %s of media %s: %w", metaID, mediaID, err)
	}

	return resp, nil
}

// RemoteUpload describes a file the API should fetch into a media record.
type RemoteUpload struct {
	MediaID  string
	FileName string
	FileURL  string
	Size     int64
}

// UploadRemote starts a remote upload and returns the transcoding job ID.
func (r *MediaRepo) UploadRemote(ctx context.Context, upload RemoteUpload) (string, error) {
	query := NewQuery(
		"size", upload.Size,
		"file_name", upload.FileName,
		"type", "remote",
		"fileUrl", upload.FileURL,
		"media_id", upload.MediaID,
	)

	resp, err := r.client.Do(ctx, &Request{Method: http.MethodGet, Endpoint: r.endpoints.UploadMedia(), Query: query})
	if err != nil {
		return "", fmt.Errorf("uploading to media %s: %w", upload.MediaID, err)
	}

	jobID := resp.Data.First("data.jobId", "data.job_id", "job_id", "id").String()
	if jobID == "" {
		return "", fmt.Errorf("uploading to media %s: response has no job id", upload.MediaID)
	}

	return jobID, nil
}

// ContainsLookup is the listing query that finds titles containing signature.
func (r *MediaRepo) ContainsLookup(signature string, limit int) IndexLookup {
	return IndexLookup{
		Endpoint: r.endpoints.ListMedia(),
		Query:    NewQuery("title", signature, "title-rule", "contains", "limit", limit),
	}
}

// MediaSample is an existing media record picked for read-only tests, with
// words from its title and description to search for. ID prefers "id" over
// "_id".
type MediaSample struct {
	ID          string
	Title       string
	Description string
	CategoryID  string
	TitleWord   string
	DescWord    string
}

// RandomMedia picks one of the first limit media records at random.
func (r *MediaRepo) RandomMedia(ctx context.Context, limit int) (*MediaSample, error) {
	resp, err := r.List(ctx, NewQuery("limit", limit))
	if err != nil {
		return nil, err
	}

	items := resp.Items()
	if len(items) == 0 {
		return nil, ErrNoMedia
	}

	media := items[rand.IntN(len(items))] //nolint:gosec // test data selection

	return newMediaSample(media), nil
}

func newMediaSample(media Value) *MediaSample {
	category := media.Get("categories")
	if category.Kind() == KindArray {
		category = category.Get("0")
	}

	title := media.Get("title").String()
	description := media.Get("description").String()

	return &MediaSample{
		ID:          media.First("id", "_id").String(),
		Title:       title,
		Description: description,
		CategoryID:  category.String(),
		TitleWord:   firstWordLongerThan(title, 2),
		DescWord:    firstWordLongerThan(description, 2),
	}
}

func firstWordLongerThan(s string, length int) string {
	for _, word := range strings.Fields(s) {
		if len([]rune(word)) > length {
			return word
		}
	}

	return ""
}
