package ports

import (
	"context"
	"time"

	"morningbyte/internal/domain"
)

// Renderer turns a finalized digest into a document at path and returns the
// path actually written. Rendering failures are its own concern; the core
// never retries.
type Renderer interface {
	Render(digest domain.Digest, path string) (string, error)
}

// Store keeps generated digest files on disk and prunes old ones.
type Store interface {
	TargetPath(date time.Time) string
	CleanupOld() ([]string, error)
	List() ([]DigestFile, error)
}

// DigestFile describes one previously generated digest on disk.
type DigestFile struct {
	Path string
	Date time.Time
	Size int64
}

// Mailer ships a generated document to its reader.
type Mailer interface {
	Send(ctx context.Context, path string) error
}

// Enricher optionally fills Article.Content for grouped articles in place.
// It must never fail the run; articles it cannot enrich are left unchanged.
type Enricher interface {
	Enrich(ctx context.Context, grouped *domain.Grouped)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
