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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envBaseURL        = "API_BASE_URL"
	envAuthToken      = "API_TOKEN"
	envVMSBaseURL     = "VMS"
	envVMSToken       = "TOKEN_VMS"
	envRequestTimeout = "REQUEST_TIMEOUT"
	envTestTimeout    = "TEST_TIMEOUT"
	envIndexTimeout   = "INDEX_TIMEOUT"
	envIndexInterval  = "INDEX_POLL_INTERVAL"
	envSkip           = "SKIP_INTEGRATION"
	envLogLevel       = "LOG_LEVEL"
	envLogFormat      = "LOG_FORMAT"
	envLogResponses   = "LOG_RESPONSES"
)

// Credentials is a base endpoint and the token that authenticates against it.
type Credentials struct {
	BaseURL string
	Token   string
}

type TestConfig struct {
	BaseURL         string
	AuthToken       string
	VMSBaseURL      string
	VMSToken        string
	RequestTimeout  time.Duration
	TestTimeout     time.Duration
	IndexTimeout    time.Duration
	IndexInterval   time.Duration
	SkipIntegration bool
	LogLevel        string
	LogFormat       string
	LogResponses    bool
}

// Primary returns the media API credentials.
func (c *TestConfig) Primary() Credentials {
	return Credentials{
		BaseURL: c.BaseURL,
		Token:   c.AuthToken,
	}
}

// VMS returns the video management service credentials. Only some flows need
// them, so their absence is reported here rather than at load time.
func (c *TestConfig) VMS() (Credentials, error) {
	var missing []string

	if c.VMSBaseURL == "" {
		missing = append(missing, envVMSBaseURL)
	}

	if c.VMSToken == "" {
		missing = append(missing, envVMSToken)
	}

	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: %s", ErrMissingConfiguration, strings.Join(missing, ", "))
	}

	return Credentials{
		BaseURL: c.VMSBaseURL,
		Token:   c.VMSToken,
	}, nil
}

// AddFlags registers command line overrides for the configuration. Flags are
// bound into the given viper instance and take precedence over the environment.
func AddFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-url", "", "media API base URL (overrides "+envBaseURL+")")
	flags.String("token", "", "media API token (overrides "+envAuthToken+")")
	flags.Duration("request-timeout", 0, "per request timeout (overrides "+envRequestTimeout+")")
	flags.Duration("index-timeout", 0, "budget to wait for created media to be listed (overrides "+envIndexTimeout+")")
	flags.String("log-level", "", "log level: debug, info or error (overrides "+envLogLevel+")")

	_ = v.BindPFlag(envBaseURL, flags.Lookup("base-url"))
	_ = v.BindPFlag(envAuthToken, flags.Lookup("token"))
	_ = v.BindPFlag(envRequestTimeout, flags.Lookup("request-timeout"))
	_ = v.BindPFlag(envIndexTimeout, flags.Lookup("index-timeout"))
	_ = v.BindPFlag(envLogLevel, flags.Lookup("log-level"))
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if required configuration values are missing.
func LoadTestConfig() (*TestConfig, error) {
	LoadEnvFile()

	return LoadTestConfigFrom(viper.New())
}

// LoadTestConfigFrom reads configuration through an existing viper instance,
// e.g. one with command line flags bound by AddFlags. With SKIP_INTEGRATION
// set the required fields are not validated, so callers can skip without
// credentials.
func LoadTestConfigFrom(v *viper.Viper) (*TestConfig, error) {
	setDefaults(v)
	v.AutomaticEnv()

	config := &TestConfig{
		BaseURL:         strings.TrimSpace(v.GetString(envBaseURL)),
		AuthToken:       strings.TrimSpace(v.GetString(envAuthToken)),
		VMSBaseURL:      strings.TrimSpace(v.GetString(envVMSBaseURL)),
		VMSToken:        strings.TrimSpace(v.GetString(envVMSToken)),
		RequestTimeout:  getDurationWithDefault(v, envRequestTimeout, 30*time.Second),
		TestTimeout:     getDurationWithDefault(v, envTestTimeout, 30*time.Second),
		IndexTimeout:    getDurationWithDefault(v, envIndexTimeout, 7*time.Second),
		IndexInterval:   getDurationWithDefault(v, envIndexInterval, 500*time.Millisecond),
		SkipIntegration: v.GetBool(envSkip),
		LogLevel:        v.GetString(envLogLevel),
		LogFormat:       v.GetString(envLogFormat),
		LogResponses:    v.GetBool(envLogResponses),
	}

	if config.SkipIntegration {
		return config, nil
	}

	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(envSkip, false)
	v.SetDefault(envLogLevel, "info")
	v.SetDefault(envLogFormat, "console")
	v.SetDefault(envLogResponses, false)
}

// getDurationWithDefault gets a duration from the environment or returns the
// default when unset, zero or unparsable.
func getDurationWithDefault(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if !v.IsSet(key) {
		return defaultValue
	}

	duration, err := time.ParseDuration(v.GetString(key))
	if err != nil || duration <= 0 {
		return defaultValue
	}

	return duration
}

// LoadEnvFile loads the nearest .env file, if any, into the environment.
// Variables that are already set are left alone.
func LoadEnvFile() {
	envPaths := []string{
		".env",
		"../.env",       // From test/api
		"../../.env",    // From test/api/suites
		"../../../.env", // From test/contracts/consumer/media
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Variables already present in the environment win over the file.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateRequiredFields checks that all required configuration values are set.
func validateRequiredFields(config *TestConfig) error {
	var missing []string

	if config.BaseURL == "" {
		missing = append(missing, envBaseURL)
	}

	if config.AuthToken == "" {
		missing = append(missing, envAuthToken)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s. Please set these environment variables or add them to a .env file", ErrMissingConfiguration, strings.Join(missing, ", "))
	}

	return nil
}
