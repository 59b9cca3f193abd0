package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/board"
	"github.com/roflsunriz/VBBB-sub002/internal/cookiejar"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
	"github.com/roflsunriz/VBBB-sub002/internal/proxymanager"
)

func testBoard(serverURL string) board.Board {
	return board.New("テスト", serverURL+"/test/", "test", serverURL+"/", board.Type2ch, "")
}

func newTestStore(t *testing.T, dataDir string) *Store {
	t.Helper()
	jar := cookiejar.New()
	client := httpclient.New(jar, proxymanager.New())
	return NewStore(dataDir, client)
}

func TestFetchDatFullReplaceOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("A<>sage<>dt<>body<>title\n"))
	}))
	defer srv.Close()

	store := newTestStore(t, t.TempDir())
	b := testBoard(srv.URL)
	result, err := store.FetchDat(context.Background(), b, "1000", 0, "", false, nil)
	if err != nil {
		t.Fatalf("FetchDat: %v", err)
	}
	if result.Outcome != OutcomeFullReplace {
		t.Fatalf("expected OutcomeFullReplace, got %v", result.Outcome)
	}
	if len(result.Responses) != 1 {
		t.Fatalf("expected 1 parsed response, got %+v", result.Responses)
	}
}

func TestFetchDatNotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	store := newTestStore(t, dataDir)
	b := testBoard(srv.URL)

	boardDir := BoardDir(dataDir, b.URL)
	if err := os.MkdirAll(boardDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	existing := []byte("A<>sage<>dt<>body<>title\n")
	if err := os.WriteFile(boardDir+"/1000.dat", existing, 0o600); err != nil {
		t.Fatalf("seed existing dat: %v", err)
	}

	result, err := store.FetchDat(context.Background(), b, "1000", int64(len(existing)), "", false, nil)
	if err != nil {
		t.Fatalf("FetchDat: %v", err)
	}
	if result.Outcome != OutcomeUnchanged {
		t.Fatalf("expected OutcomeUnchanged, got %v", result.Outcome)
	}
	if result.NewSize != int64(len(existing)) {
		t.Fatalf("expected size to be preserved on 304, got %d", result.NewSize)
	}
	if len(result.Responses) != 1 {
		t.Fatalf("expected the unchanged file's responses to still be parsed, got %+v", result.Responses)
	}
}

func TestFetchDatRangeNotSatisfiableSignalsRebuild(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	store := newTestStore(t, t.TempDir())
	b := testBoard(srv.URL)
	result, err := store.FetchDat(context.Background(), b, "1000", 999, "", false, nil)
	if err != nil {
		t.Fatalf("FetchDat: %v", err)
	}
	if result.Outcome != OutcomeRebuildNeeded {
		t.Fatalf("expected OutcomeRebuildNeeded, got %v", result.Outcome)
	}
}

func TestFetchDatSendsRangeWhenPrevSizeNonZero(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	store := newTestStore(t, t.TempDir())
	b := testBoard(srv.URL)
	if _, err := store.FetchDat(context.Background(), b, "1000", 512, "", false, nil); err != nil {
		t.Fatalf("FetchDat: %v", err)
	}
	if gotRange != "bytes=512-" {
		t.Fatalf("expected Range header bytes=512-, got %q", gotRange)
	}
}

func TestFetchDatSendsIfModifiedSinceWhenPrevLastModSet(t *testing.T) {
	var gotIMS string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIMS = r.Header.Get("If-Modified-Since")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	store := newTestStore(t, t.TempDir())
	b := testBoard(srv.URL)
	prevLastMod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339)
	if _, err := store.FetchDat(context.Background(), b, "1000", 512, prevLastMod, true, nil); err != nil {
		t.Fatalf("FetchDat: %v", err)
	}
	if gotIMS == "" {
		t.Fatalf("expected an If-Modified-Since header to be sent")
	}
}

func TestFetchOysterBuildsKakoURLAndCaches(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("A<>sage<>dt<>body<>title\n"))
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	store := newTestStore(t, dataDir)
	b := testBoard(srv.URL)

	result, err := store.FetchOyster(context.Background(), b, "1234567890", "tag:abc")
	if err != nil {
		t.Fatalf("FetchOyster: %v", err)
	}
	if result.Outcome != OutcomeFullReplace {
		t.Fatalf("expected OutcomeFullReplace, got %v", result.Outcome)
	}
	if len(result.Responses) != 1 {
		t.Fatalf("expected 1 parsed response, got %+v", result.Responses)
	}
	if gotPath != "/test/kako/1234/1234567890.dat" {
		t.Fatalf("unexpected oyster path %q", gotPath)
	}
	if gotQuery != "sid=tag:abc" {
		t.Fatalf("unexpected oyster query %q", gotQuery)
	}

	idxPath := filepath.Join(BoardDir(dataDir, b.URL), "Folder.idx")
	rows, err := LoadFolderIdx(idxPath)
	if err != nil {
		t.Fatalf("LoadFolderIdx: %v", err)
	}
	if len(rows) != 1 || rows[0].FileName != "1234567890.dat" {
		t.Fatalf("expected Folder.idx to gain the oyster thread's row, got %+v", rows)
	}
}

func TestFetchDatUpdatesFolderIdxAfterSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("A<>sage<>dt<>body<>title\n"))
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	store := newTestStore(t, dataDir)
	b := testBoard(srv.URL)

	if _, err := store.FetchDat(context.Background(), b, "1000", 0, "", false, nil); err != nil {
		t.Fatalf("FetchDat: %v", err)
	}

	idxPath := filepath.Join(BoardDir(dataDir, b.URL), "Folder.idx")
	rows, err := LoadFolderIdx(idxPath)
	if err != nil {
		t.Fatalf("LoadFolderIdx: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected Folder.idx to gain one row, got %d", len(rows))
	}
	if rows[0].FileName != "1000.dat" || rows[0].Count != 1 {
		t.Fatalf("unexpected Folder.idx row: %+v", rows[0])
	}
	if rows[0].Size == 0 {
		t.Fatalf("expected a non-zero recorded size, got %+v", rows[0])
	}

	// A second fetch against an existing row must update it in place rather
	// than duplicating it.
	if _, err := store.FetchDat(context.Background(), b, "1000", rows[0].Size, "", false, nil); err != nil {
		t.Fatalf("FetchDat (second): %v", err)
	}
	rows, err = LoadFolderIdx(idxPath)
	if err != nil {
		t.Fatalf("LoadFolderIdx: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected Folder.idx to still have one row after a second fetch, got %d", len(rows))
	}
}
