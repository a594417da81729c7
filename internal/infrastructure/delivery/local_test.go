package delivery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"morningbyte/internal/config"
)

func writeDigestFile(t *testing.T, dir string, date time.Time) string {
	t.Helper()
	path := filepath.Join(dir, "morning-byte-"+date.Format("2006-01-02")+".epub")
	if err := os.WriteFile(path, []byte("epub"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLocalStoreTargetPath(t *testing.T) {
	t.Parallel()

	store := NewLocalStore(config.DeliveryConfig{OutputDir: "/var/digests"})
	date := time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)

	want := filepath.Join("/var/digests", "morning-byte-2024-05-17.epub")
	if got := store.TargetPath(date); got != want {
		t.Fatalf("TargetPath = %q, want %q", got, want)
	}
}

func TestLocalStoreCleanupOld(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := writeDigestFile(t, dir, time.Now().AddDate(0, 0, -10))
	fresh := writeDigestFile(t, dir, time.Now())
	odd := filepath.Join(dir, "morning-byte-notadate.epub")
	if err := os.WriteFile(odd, []byte("epub"), 0o644); err != nil {
		t.Fatalf("write odd file: %v", err)
	}

	store := NewLocalStore(config.DeliveryConfig{OutputDir: dir, KeepDays: 7})
	deleted, err := store.CleanupOld()
	if err != nil {
		t.Fatalf("CleanupOld error: %v", err)
	}

	if len(deleted) != 1 || deleted[0] != old {
		t.Fatalf("deleted = %v, want only %s", deleted, old)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old digest still present")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh digest removed")
	}
	if _, err := os.Stat(odd); err != nil {
		t.Fatal("unparseable filename removed")
	}
}

func TestLocalStoreCleanupDisabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := writeDigestFile(t, dir, time.Now().AddDate(0, 0, -100))

	store := NewLocalStore(config.DeliveryConfig{OutputDir: dir, KeepDays: 0})
	deleted, err := store.CleanupOld()
	if err != nil {
		t.Fatalf("CleanupOld error: %v", err)
	}
	if len(deleted) != 0 {
		t.Fatalf("deleted = %v, want none with retention disabled", deleted)
	}
	if _, err := os.Stat(old); err != nil {
		t.Fatal("file removed despite disabled retention")
	}
}

func TestLocalStoreListNewestFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDigestFile(t, dir, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	writeDigestFile(t, dir, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))
	writeDigestFile(t, dir, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))

	store := NewLocalStore(config.DeliveryConfig{OutputDir: dir, KeepDays: 7})
	digests, err := store.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}

	if len(digests) != 3 {
		t.Fatalf("expected 3 digests, got %d", len(digests))
	}
	for i := 1; i < len(digests); i++ {
		if digests[i].Date.After(digests[i-1].Date) {
			t.Fatalf("not sorted newest first: %v", digests)
		}
	}
	if digests[0].Size == 0 {
		t.Fatal("file size not populated")
	}
}

func TestKindleMailerConfigured(t *testing.T) {
	t.Parallel()

	full := config.DeliveryConfig{
		KindleEmail:  "me@kindle.com",
		SenderEmail:  "me@gmail.com",
		SMTPUser:     "me@gmail.com",
		SMTPPassword: "app-password",
	}
	if !NewKindleMailer(full).Configured() {
		t.Fatal("complete settings reported as unconfigured")
	}

	partial := full
	partial.SMTPPassword = ""
	if NewKindleMailer(partial).Configured() {
		t.Fatal("missing password reported as configured")
	}

	if NewKindleMailer(config.DeliveryConfig{}).Configured() {
		t.Fatal("empty settings reported as configured")
	}
}
