package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestNormalizeTables(t *testing.T) {
	got := normalizeTables([]string{" Cards ", "", "card_reviews"})
	if !reflect.DeepEqual(got, []string{"cards", "card_reviews"}) {
		t.Fatalf("unexpected %v", got)
	}
	if normalizeTables([]string{" "}) != nil {
		t.Fatal("expected nil for blank input")
	}
}

func TestWantsGzip(t *testing.T) {
	cases := []struct {
		path string
		flag bool
		want bool
	}{
		{"backup.jsonl", false, false},
		{"backup.jsonl", true, true},
		{"backup.JSONL.GZ", false, true},
		{"-", false, false},
	}
	for _, c := range cases {
		if got := wantsGzip(c.path, c.flag); got != c.want {
			t.Errorf("wantsGzip(%q, %v) = %v", c.path, c.flag, got)
		}
	}
}

func TestBackupFilename(t *testing.T) {
	now := time.Date(2025, 4, 10, 9, 5, 7, 0, time.FixedZone("BRT", -3*3600))
	if got := backupFilename(now, true); got != "studydeck-backup-20250410-120507.jsonl.gz" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestBackupSinkAndSourceGzip(t *testing.T) {
	cmd := &cobra.Command{}
	path := filepath.Join(t.TempDir(), "nested", "backup.jsonl.gz")

	w, cls, err := createBackupSink(cmd, path, true)
	if err != nil {
		t.Fatalf("createBackupSink: %v", err)
	}
	if _, err := io.WriteString(w, "{\"type\":\"meta\"}\n"); err != nil {
		t.Fatal(err)
	}
	if err := cls.close(); err != nil {
		t.Fatalf("close sink: %v", err)
	}

	r, cls, err := openBackupSource(cmd, path, true)
	if err != nil {
		t.Fatalf("openBackupSource: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cls.close(); err != nil {
		t.Fatalf("close source: %v", err)
	}
	if string(data) != "{\"type\":\"meta\"}\n" {
		t.Fatalf("round trip mismatch %q", data)
	}

	if _, _, err := openBackupSource(cmd, "", false); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestBackupSinkStdout(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	w, cls, err := createBackupSink(cmd, stdioPath, false)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "row\n")
	if err := cls.close(); err != nil || out.String() != "row\n" {
		t.Fatalf("stdout sink wrote %q (%v)", out.String(), err)
	}
}
