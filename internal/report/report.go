package report

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Reporter is the error sink of a run. Reports may be buffered until Flush.
type Reporter interface {
	Report(err error, tags map[string]string)
	Flush(ctx context.Context) error
}

// Ignorable reports errors that are expected under backend rate limiting.
func Ignorable(err error) bool {
	if err == nil {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

type LogReporter struct {
	log logrus.FieldLogger
}

func NewLogReporter(log logrus.FieldLogger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(err error, tags map[string]string) {
	if Ignorable(err) {
		return
	}

	fields := make(logrus.Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}

	r.log.WithFields(fields).WithError(err).Error("reported error")
}

func (r *LogReporter) Flush(context.Context) error {
	return nil
}

type multi []Reporter

// Multi fans every report out to all reporters.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

func (m multi) Report(err error, tags map[string]string) {
	for _, r := range m {
		r.Report(err, tags)
	}
}

func (m multi) Flush(ctx context.Context) error {
	var errs []error
	for _, r := range m {
		if err := r.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
