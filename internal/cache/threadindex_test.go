package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestThreadIndexRoundTrip(t *testing.T) {
	row := ThreadIndex{
		No:              1,
		FileName:        "1234567890.dat",
		Title:           `タイトル & "引用"`,
		Count:           42,
		Size:            2048,
		LastModified:    time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		HasLastModified: true,
		Kokomade:        -1,
		AllResCount:     42,
		NewResCount:     3,
		AgeSage:         2,
	}
	line := encodeThreadIndexLine(row)
	got, err := decodeThreadIndexLine(line)
	if err != nil {
		t.Fatalf("decodeThreadIndexLine: %v", err)
	}
	if got != row {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, row)
	}
}

func TestThreadIndexEscapingOrderAvoidsDoubleUnescape(t *testing.T) {
	row := ThreadIndex{FileName: "x.dat", Title: `&quot;already quoted&quot;`}
	line := encodeThreadIndexLine(row)
	got, err := decodeThreadIndexLine(line)
	if err != nil {
		t.Fatalf("decodeThreadIndexLine: %v", err)
	}
	if got.Title != row.Title {
		t.Fatalf("expected literal &quot; text to survive a round trip unchanged, got %q", got.Title)
	}
}

func TestLoadFolderIdxMissingFileYieldsNoRows(t *testing.T) {
	rows, err := LoadFolderIdx(filepath.Join(t.TempDir(), "Folder.idx"))
	if err != nil {
		t.Fatalf("LoadFolderIdx: %v", err)
	}
	if rows != nil {
		t.Fatalf("expected nil rows for missing file, got %+v", rows)
	}
}

func TestSaveAndLoadFolderIdxRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Folder.idx")
	rows := []ThreadIndex{
		{No: 1, FileName: "1.dat", Title: "一", Count: 1, Kokomade: -1},
		{No: 2, FileName: "2.dat", Title: "二", Count: 2, Kokomade: 5, AllResCount: 5},
	}
	if err := SaveFolderIdx(path, rows); err != nil {
		t.Fatalf("SaveFolderIdx: %v", err)
	}
	got, err := LoadFolderIdx(path)
	if err != nil {
		t.Fatalf("LoadFolderIdx: %v", err)
	}
	if len(got) != 2 || got[0] != rows[0] || got[1] != rows[1] {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, rows)
	}
}
