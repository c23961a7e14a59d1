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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nscaledev/media-api-tests/test/api"
	"github.com/nscaledev/media-api-tests/test/api/fake"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	application = "media-api-smoke"

	selfTestToken = "self-test-token"
)

type options struct {
	count    int
	selfTest bool
}

func newRootCommand() *cobra.Command {
	var opts options

	v := viper.New()

	cmd := &cobra.Command{
		Use:   application,
		Short: "Create media, wait for it to be listed and clean it up again",
		Long: "Runs a create, wait-until-indexed, list and release cycle against the media API " +
			"configured by API_BASE_URL and API_TOKEN (or a .env file). With --self-test the cycle " +
			"runs against an in-process fake API instead.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, opts)
		},
	}

	api.AddFlags(cmd.Flags(), v)

	cmd.Flags().IntVar(&opts.count, "count", 1, "number of media records to create")
	cmd.Flags().BoolVar(&opts.selfTest, "self-test", false, "run against an in-process fake API")

	return cmd
}

func run(ctx context.Context, v *viper.Viper, opts options) error {
	if opts.count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", opts.count)
	}

	if opts.selfTest {
		server := fake.New(selfTestToken)
		defer server.Close()

		server.IndexDelay = 200 * time.Millisecond

		v.Set("API_BASE_URL", server.URL())
		v.Set("API_TOKEN", selfTestToken)
	} else {
		api.LoadEnvFile()
	}

	config, err := api.LoadTestConfigFrom(v)
	if err != nil {
		return err
	}

	if err := api.SetupLogging(os.Stderr, config); err != nil {
		return err
	}

	logger := log.Log.WithName("smoke")
	logger.Info("smoke test starting", "application", application, "count", opts.count, "selfTest", opts.selfTest)

	ctx = log.IntoContext(ctx, logger)

	client, err := api.NewAPIClientWithConfig(config)
	if err != nil {
		return err
	}

	return smoke(ctx, client, config, opts.count)
}

// smoke creates count media records, waits for each to be listed and checks
// the listing count, releasing everything whatever the outcome.
func smoke(ctx context.Context, client *api.APIClient, config *api.TestConfig, count int) error {
	logger := log.FromContext(ctx).WithValues("baseURL", client.BaseURL())

	manager := api.NewResourceManager(client)
	repo := api.NewMediaRepo(client)

	budget := api.WaitOptions{
		Timeout:  config.IndexTimeout,
		Interval: config.IndexInterval,
	}

	return manager.Run(ctx, func(ctx context.Context) error {
		before, err := repo.Count(ctx, nil)
		if err != nil {
			return err
		}

		for range count {
			signature := api.Signature("smoke")

			media, err := manager.CreateMedia(ctx, map[string]any{"title": signature + " video"})
			if err != nil {
				return err
			}

			start := time.Now()

			if err := manager.WaitUntilIndexed(ctx, media, repo.ContainsLookup(signature, 10), budget); err != nil {
				return err
			}

			logger.Info("media indexed", "id", media.ID, "after", time.Since(start))
		}

		after, err := repo.Count(ctx, nil)
		if err != nil {
			return err
		}

		if after < before+int64(count) {
			return fmt.Errorf("%w: listing count went from %d to %d after creating %d", errCountMismatch, before, after, count)
		}

		logger.Info("smoke test passed", "created", count, "countBefore", before, "countAfter", after)

		return nil
	})
}

var errCountMismatch = errors.New("media count did not grow")

func main() {
	ctx := cr.SetupSignalHandler()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
