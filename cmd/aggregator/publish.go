package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/aggregator"
	"github.com/DalintonC/lomigg-news/internal/artifact"
	"github.com/DalintonC/lomigg-news/internal/config"
	"github.com/DalintonC/lomigg-news/internal/metrics"
)

const pushJob = "lomigg_news"

// publisher writes the run artifact and pushes metrics after every run.
type publisher struct {
	cfg      config.Config
	exporter *metrics.Exporter
	uploader *artifact.S3Uploader
	log      logrus.FieldLogger
}

func newPublisher(ctx context.Context, cfg config.Config, exporter *metrics.Exporter, log logrus.FieldLogger) *publisher {
	p := &publisher{cfg: cfg, exporter: exporter, log: log}

	if cfg.S3Bucket != "" {
		uploader, err := artifact.NewS3Uploader(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			log.WithError(err).Warn("artifact upload disabled")
		} else {
			p.uploader = uploader
		}
	}

	return p
}

func (p *publisher) afterRun(ctx context.Context, res aggregator.Result, runErr error) {
	log := p.log.WithField("run_id", res.RunID)

	if runErr == nil {
		p.writeArtifact(ctx, log, res)
	}

	if p.cfg.PushgatewayURL != "" {
		if err := p.exporter.Push(ctx, p.cfg.PushgatewayURL, pushJob); err != nil {
			log.WithError(err).Warn("failed to push metrics")
		}
	}
}

func (p *publisher) writeArtifact(ctx context.Context, log logrus.FieldLogger, res aggregator.Result) {
	data, err := artifact.Encode(artifact.Top(res.Articles, p.cfg.ArtifactSize))
	if err != nil {
		log.WithError(err).Warn("failed to encode artifact")
		return
	}

	if err := artifact.WriteFile(p.cfg.ArtifactPath, data); err != nil {
		log.WithError(err).Warn("failed to write artifact")
	} else {
		log.WithField("path", p.cfg.ArtifactPath).Info("artifact written")
	}

	if p.uploader == nil {
		return
	}
	if err := p.uploader.Upload(ctx, data); err != nil {
		log.WithError(err).Warn("failed to upload artifact")
		return
	}

	log.WithField("key", p.uploader.Key()).Info("artifact uploaded")
}
