// Package delivery hands generated digest files to their consumers: the
// local output directory and the reader's Send-to-Kindle address.
package delivery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"morningbyte/internal/config"
	"morningbyte/internal/ports"
)

const digestFilePrefix = "morning-byte-"

// LocalStore keeps dated digest files in the output directory and prunes
// files older than the retention window.
type LocalStore struct {
	outputDir string
	keepDays  int
}

var _ ports.Store = (*LocalStore)(nil)

// NewLocalStore wires the output directory and retention settings.
func NewLocalStore(cfg config.DeliveryConfig) *LocalStore {
	return &LocalStore{outputDir: cfg.OutputDir, keepDays: cfg.KeepDays}
}

// TargetPath returns the dated file path a digest for date should be written to.
func (s *LocalStore) TargetPath(date time.Time) string {
	name := fmt.Sprintf("%s%s.epub", digestFilePrefix, date.Format("2006-01-02"))
	return filepath.Join(s.outputDir, name)
}

// CleanupOld removes digest files older than the retention period and
// returns the deleted paths. Files whose names don't parse are left alone.
func (s *LocalStore) CleanupOld() ([]string, error) {
	if s.keepDays <= 0 {
		return nil, nil
	}

	matches, err := filepath.Glob(filepath.Join(s.outputDir, digestFilePrefix+"*.epub"))
	if err != nil {
		return nil, fmt.Errorf("scan output dir: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -s.keepDays)
	var deleted []string
	for _, path := range matches {
		date, ok := dateFromFilename(path)
		if !ok {
			continue
		}
		if date.Before(cutoff) {
			if err := os.Remove(path); err != nil {
				continue
			}
			deleted = append(deleted, path)
		}
	}
	return deleted, nil
}

// List returns saved digests sorted newest first.
func (s *LocalStore) List() ([]ports.DigestFile, error) {
	matches, err := filepath.Glob(filepath.Join(s.outputDir, digestFilePrefix+"*.epub"))
	if err != nil {
		return nil, fmt.Errorf("scan output dir: %w", err)
	}

	var digests []ports.DigestFile
	for _, path := range matches {
		date, ok := dateFromFilename(path)
		if !ok {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		digests = append(digests, ports.DigestFile{Path: path, Date: date, Size: info.Size()})
	}

	sort.Slice(digests, func(i, j int) bool {
		return digests[i].Date.After(digests[j].Date)
	})
	return digests, nil
}

func dateFromFilename(path string) (time.Time, bool) {
	name := strings.TrimSuffix(filepath.Base(path), ".epub")
	name = strings.TrimPrefix(name, digestFilePrefix)
	date, err := time.Parse("2006-01-02", name)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
