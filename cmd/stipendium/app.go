package main

import (
	"fmt"

	"github.com/ternarybob/stipendium/internal/interfaces"
	"github.com/ternarybob/stipendium/internal/processor"
	"github.com/ternarybob/stipendium/internal/services/archive"
	"github.com/ternarybob/stipendium/internal/services/drive"
	"github.com/ternarybob/stipendium/internal/services/render"
	"github.com/ternarybob/stipendium/internal/services/report"
	"github.com/ternarybob/stipendium/internal/services/source"
	"github.com/ternarybob/stipendium/internal/tracker"
)

// newTracker builds the status store and its accessors. Commands that only
// touch local state (status, reset, prune) use this and skip Drive entirely.
func newTracker() (*tracker.Store, *tracker.Sessions, *tracker.Gate) {
	store := tracker.NewStore(config.Storage.StatusFile, logger)
	return store, tracker.NewSessions(store, logger), tracker.NewGate(store, logger)
}

// newProcessor wires the full batch pipeline. The returned closer releases
// the artifact archive.
func newProcessor() (*processor.Processor, func(), error) {
	_, sessions, gate := newTracker()

	driveClient, err := drive.NewClient(config.Drive.CredentialsFile,
		drive.WithLogger(logger),
		drive.WithRateInterval(config.Drive.RateLimit.Duration()),
		drive.WithTimeout(config.Drive.RequestTimeout.Duration()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	descriptions := render.NewDescriptions(logger)
	if config.PDF.SLADescriptions != "" {
		loaded, err := render.LoadDescriptions(config.PDF.SLADescriptions, logger)
		if err != nil {
			logger.Warn().Str("path", config.PDF.SLADescriptions).Err(err).
				Msg("Failed to load SLA descriptions, slips will use the default methodology text")
		} else {
			descriptions = loaded
		}
	}
	renderer := render.NewService(logger, config.PDF.CompanyName, config.PDF.LocalCurrency, descriptions)

	var artifactArchive interfaces.ArtifactArchive
	closer := func() {}
	if config.Storage.Badger.Path != "" || config.Storage.Badger.InMemory {
		archiveService, err := archive.NewService(logger, &config.Storage.Badger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open artifact archive: %w", err)
		}
		artifactArchive = archiveService
		closer = func() {
			if err := archiveService.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close artifact archive")
			}
		}
	}

	proc := processor.New(
		logger,
		config,
		sessions,
		gate,
		driveClient,
		source.NewService(logger),
		renderer,
		driveClient,
		artifactArchive,
		report.NewService(logger, driveClient),
	)

	return proc, closer, nil
}
