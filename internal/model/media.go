package model

import "time"

// Package model contains domain models/data structures.
// Keep it free of business logic; classification rules live in the service layer.

// MediaType is the coarse classification of an uploaded media object.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
	MediaTypeImage MediaType = "image"
	MediaTypeOther MediaType = "other"
)

// Media represents one uploaded media object in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// All fields are immutable after the upload completes; Size must equal the
// authoritative byte length held by the object store for StoragePath.
type Media struct {
	ID          string    `json:"media_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	MediaType   MediaType `json:"media_type"`
	UploadTime  time.Time `json:"upload_time"`
}
