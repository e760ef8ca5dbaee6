package domain

import (
	"strings"
	"time"
)

// AttachmentKind classifies an attachment by content type at capture time.
type AttachmentKind string

const (
	AttachmentKindImage AttachmentKind = "image"
	AttachmentKindFile  AttachmentKind = "file"
)

// Attachment records metadata for a file posted inside a ticket channel.
type Attachment struct {
	Name string         `json:"name"`
	URL  string         `json:"url"`
	Kind AttachmentKind `json:"kind"`
}

// ClassifyAttachment derives the attachment kind from its MIME content type.
func ClassifyAttachment(contentType string) AttachmentKind {
	if strings.HasPrefix(contentType, "image/") {
		return AttachmentKindImage
	}
	return AttachmentKindFile
}

// TranscriptEntry is one recorded message in a ticket channel. Entries are
// append-only and keep event-arrival order through archival. The staff flag
// reflects role membership at capture time and is never re-evaluated.
type TranscriptEntry struct {
	AuthorID    string       `json:"authorId"`
	AuthorName  string       `json:"authorName"`
	IsStaff     bool         `json:"isStaff"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// GuildConfig stores the per-guild panel channel authorization. Upserted,
// never deleted programmatically.
type GuildConfig struct {
	GuildID        string `json:"guildId"`
	PanelChannelID string `json:"ticketChannelId"`
}
