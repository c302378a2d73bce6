package ingest

import (
	"time"
)

// Document is one certificate read from disk, ready for text extraction.
type Document struct {
	Path       string
	Name       string
	Ext        string
	Format     string
	HashHex    string
	Data       []byte
	ReceivedAt time.Time
}

// IngestionResult is the per-file outcome of a directory scan.
type IngestionResult struct {
	SourcePath string
	HashHex    string
	FileExt    string
	Err        string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}
