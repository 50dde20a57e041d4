package storage

import "github.com/7mcool/Vortex-Automator/model"

// PublicationLog archives completed uploads. The quota ledger stays the
// source of truth for slot accounting; the log exists for reporting and is
// always allowed to fail without affecting a video's outcome.
type PublicationLog interface {
	Record(pub model.Publication) error
}

// NopPublicationLog is used when no history database is configured.
type NopPublicationLog struct{}

func (NopPublicationLog) Record(model.Publication) error { return nil }
