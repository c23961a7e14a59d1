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

// VMSClient talks to the video management service that runs transcoding jobs.
type VMSClient struct {
	client    Requester
	endpoints *Endpoints
}

func NewVMS(client Requester) *VMSClient {
	return &VMSClient{
		client:    client,
		endpoints: NewEndpoints(),
	}
}

// JobDetails returns the job document for a transcoding job.
func (v *VMSClient) JobDetails(ctx context.Context, jobID string) (Value, error) {
	resp, err := v.client.Do(ctx, &Request{Method: http.MethodGet, Endpoint: v.endpoints.JobDetails(), Query: NewQuery("id", jobID)})
	if err != nil {
		return Value{}, fmt.Errorf("getting job %s: %w", jobID, err)
	}

	return resp.Data, nil
}

// JobStatus returns the status of the first workflow of a job, e.g. DONE.
func JobStatus(job Value) string {
	return job.Get("workflows.0.status").String()
}
