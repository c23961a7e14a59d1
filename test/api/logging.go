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
	"io"
	"regexp"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// RedactionMarker replaces token values in logged URLs.
const RedactionMarker = "[REDACTED]"

var tokenQueryPattern = regexp.MustCompile(`([?&]token=)[^&#"\s]*`)

// RedactURL masks the value of every token query parameter, including URLs
// quoted inside transport error messages. It is only ever applied to copies
// destined for logs and error messages.
func RedactURL(rawURL string) string {
	return tokenQueryPattern.ReplaceAllString(rawURL, "${1}"+RedactionMarker)
}

// NewLogger builds a zap backed logr.Logger writing to w. Level is one of
// debug, info or error; format is console or json.
func NewLogger(w io.Writer, level, format string) (logr.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return logr.Discard(), fmt.Errorf("parsing log level %q: %w", level, err)
	}

	opts := []zap.Opts{
		zap.WriteTo(w),
		zap.Level(zapLevel),
		zap.UseDevMode(format != "json"),
	}

	if format == "json" {
		opts = append(opts, zap.JSONEncoder())
	} else {
		opts = append(opts, zap.ConsoleEncoder())
	}

	return zap.New(opts...), nil
}

// SetupLogging installs the process wide logger that log.FromContext falls
// back to. Test suites call it once with GinkgoWriter.
func SetupLogging(w io.Writer, config *TestConfig) error {
	logger, err := NewLogger(w, config.LogLevel, config.LogFormat)
	if err != nil {
		return err
	}

	log.SetLogger(logger)

	return nil
}

// restyLogger forwards the transport's own diagnostics to the shared logger.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	log.Log.WithName("resty").Error(nil, fmt.Sprintf(format, v...))
}

func (restyLogger) Warnf(format string, v ...any) {
	log.Log.WithName("resty").Info(fmt.Sprintf(format, v...))
}

func (restyLogger) Debugf(format string, v ...any) {
	log.Log.WithName("resty").V(1).Info(fmt.Sprintf(format, v...))
}
