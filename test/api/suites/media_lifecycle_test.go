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
	"errors"
	"fmt"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/media-api-tests/test/api"
)

var _ = Describe("Media Lifecycle", Ordered, func() {
	var (
		repo  *api.MediaRepo
		media *api.ResourceHandle
	)

	BeforeAll(func(ctx SpecContext) {
		repo = api.NewMediaRepo(client)
		media = api.CreateMediaWithCleanup(client, ctx, nil)
	})

	Context("When creating media from the default payload", func() {
		It("should return the submitted fields", func() {
			Expect(media.Data.Get("title").String()).To(ContainSubstring("Test Media"))
			Expect(media.Data.Get("description").String()).To(Equal("Descripción de prueba"))
			Expect(media.Data.Get("type").String()).To(Equal("video"))
			Expect(media.Data.Get("categories").Kind()).To(Equal(api.KindArray))
			Expect(media.Data.Get("tags").Kind()).To(Equal(api.KindArray))
			Expect(api.ValidateSchema(api.SchemaMedia, media.Data)).To(Succeed())
		})
	})

	Context("When uploading a remote file to the same media", func() {
		It("should transcode it and accept an update", func(ctx SpecContext) {
			jobID, err := repo.UploadRemote(ctx, api.RemoteUpload{
				MediaID:  media.ID,
				FileName: "Test_Video.mp4",
				FileURL:  "https://cdn.pixabay.com/video/2019/03/12/21952-323495860_tiny.mp4",
				Size:     1048576,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(jobID).NotTo(BeEmpty())

			vmsClient, err := api.NewVMSClient(config)
			if errors.Is(err, api.ErrMissingConfiguration) {
				Skip("VMS and TOKEN_VMS are not set")
			}

			Expect(err).NotTo(HaveOccurred())

			vms := api.NewVMS(vmsClient)

			Eventually(func(g Gomega) {
				job, err := vms.JobDetails(ctx, jobID)
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(api.JobStatus(job)).To(Equal("DONE"))
			}).WithContext(ctx).WithTimeout(config.TestTimeout).WithPolling(time.Second).Should(Succeed())

			update := map[string]any{
				"title":       fmt.Sprintf("Media actualizada %d", time.Now().UnixMilli()),
				"description": "Descripción actualizada desde api suite test",
			}

			resp, err := repo.Update(ctx, media.ID, update)
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(BeElementOf(http.StatusOK, http.StatusCreated))
			Expect(resp.Data.First("status", "data.status").String()).To(Equal("OK"))
			Expect(resp.Data.Get("data.title").String()).To(Equal(update["title"]))
			Expect(resp.Data.Get("data.description").String()).To(Equal(update["description"]))
		}, SpecTimeout(2*time.Minute))
	})

	Context("When managing renditions", func() {
		It("should soft delete a rendition and accept a transcode request", func(ctx SpecContext) {
			meta, err := repo.Meta(ctx, media.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta).NotTo(BeEmpty())

			var target api.Value

			for _, item := range meta {
				if !item.Get("is_original").Bool() {
					target = item
					break
				}
			}

			Expect(target.Exists()).To(BeTrue(), "media %s has no non original rendition", media.ID)

			metaID := target.ID()

			resp, err := repo.DeleteMeta(ctx, media.ID, metaID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(BeElementOf(http.StatusOK, http.StatusCreated, http.StatusNoContent))

			after, err := repo.Meta(ctx, media.ID)
			Expect(err).NotTo(HaveOccurred())

			var deleted api.Value

			for _, item := range after {
				if item.ID() == metaID {
					deleted = item
				}
			}

			Expect(deleted.Exists()).To(BeTrue(), "rendition %s is no longer listed", metaID)
			Expect(deleted.Get("status").String()).To(Equal("NEW"))

			resp, err = repo.Transcode(ctx, media.ID, metaID)
			Expect(err).NotTo(HaveOccurred())

			GinkgoWriter.Printf("transcode status=%d body=%s\n", resp.Status, resp.Data.Raw())
		})
	})
})
