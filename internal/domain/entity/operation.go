package entity

import (
	"time"

	"github.com/google/uuid"
)

type OperationKind string

const (
	OperationKindLoad    OperationKind = "LOAD"
	OperationKindPredict OperationKind = "PREDICT"
)

type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "PENDING"
	OperationStatusRunning   OperationStatus = "RUNNING"
	OperationStatusCompleted OperationStatus = "COMPLETED"
	OperationStatusFailed    OperationStatus = "FAILED"
)

// Operation is the history record for one model load or predict run.
type Operation struct {
	ID           uuid.UUID
	Slot         string
	Kind         OperationKind
	Input        string
	Status       OperationStatus
	ErrorMessage string
	VideoPath    string
	PreviewPath  string
	FrameCount   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewOperation(slot string, kind OperationKind, input string) *Operation {
	now := time.Now().UTC()
	return &Operation{
		ID:        uuid.New(),
		Slot:      slot,
		Kind:      kind,
		Input:     input,
		Status:    OperationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (o *Operation) MarkRunning() {
	o.Status = OperationStatusRunning
	o.UpdatedAt = time.Now().UTC()
}

func (o *Operation) MarkCompleted() {
	now := time.Now().UTC()
	o.Status = OperationStatusCompleted
	o.UpdatedAt = now
	o.CompletedAt = &now
}

func (o *Operation) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	o.Status = OperationStatusFailed
	o.ErrorMessage = errMsg
	o.UpdatedAt = now
	o.CompletedAt = &now
}

// AttachArtifacts records the persisted outputs of a video generation.
func (o *Operation) AttachArtifacts(videoPath, previewPath string, frameCount int) {
	o.VideoPath = videoPath
	o.PreviewPath = previewPath
	o.FrameCount = frameCount
	o.UpdatedAt = time.Now().UTC()
}
