package model

import (
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StagePending      Stage = "pending"
	StageTranscribing Stage = "transcribing"
	StageMetadata     Stage = "metadata"
	StageScheduling   Stage = "scheduling"
	StageUploading    Stage = "uploading"
	StageArchiving    Stage = "archiving"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// PipelineRun tracks one attempt to publish one video. A new run is created
// for every attempt; nothing about it survives between process runs.
type PipelineRun struct {
	ID        uuid.UUID
	VideoPath string
	ChannelID string
	Stage     Stage
	StartedAt time.Time

	Transcript string
	Metadata   Metadata
	PublishAt  time.Time
	RemoteID   string
}

func NewPipelineRun(videoPath, channelID string) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		VideoPath: videoPath,
		ChannelID: channelID,
		Stage:     StagePending,
		StartedAt: time.Now(),
	}
}

func (r *PipelineRun) Elapsed() time.Duration {
	return time.Since(r.StartedAt)
}

// Publication is the durable record of one completed upload.
type Publication struct {
	ID         uuid.UUID
	ChannelID  string
	VideoFile  string
	RemoteID   string
	PublishAt  time.Time
	UploadedAt time.Time
}
