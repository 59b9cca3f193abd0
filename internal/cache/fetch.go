package cache

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/board"
	"github.com/roflsunriz/VBBB-sub002/internal/codec"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
	"github.com/roflsunriz/VBBB-sub002/internal/parser"
	"github.com/roflsunriz/VBBB-sub002/internal/proxymanager"
)

// Outcome classifies how a differential DAT fetch resolved, per spec §4.H.
type Outcome int

const (
	OutcomeFullReplace Outcome = iota
	OutcomeAppended
	OutcomeUnchanged
	OutcomeRebuildNeeded
)

// FetchResult is the result of one differential DAT fetch.
type FetchResult struct {
	Outcome      Outcome
	Responses    []parser.Res
	NewSize      int64
	LastModified string
	HasLastMod   bool
}

// Store bundles a data directory with a shared per-board lock map and the
// shared httpclient.Client every board fetch goes through.
type Store struct {
	dataDir string
	client  *httpclient.Client
	locks   *LockMap
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string, client *httpclient.Client) *Store {
	return &Store{dataDir: dataDir, client: client, locks: NewLockMap()}
}

// FetchDat performs a differential fetch of b's thread threadID, reconciling
// the on-disk <threadId>.dat against the server per spec §4.H's
// 200/206/304/416 rules, and returns the full parsed response set plus a
// classification of what happened.
func (s *Store) FetchDat(ctx context.Context, b board.Board, threadID string, prevSize int64, prevLastModified string, hasPrevLastMod bool, replaceRules []ReplaceRule) (*FetchResult, error) {
	boardDir := BoardDir(s.dataDir, b.URL)
	unlock := s.locks.Lock(boardDir)
	defer unlock()

	if err := os.MkdirAll(boardDir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: create board dir: %w", err)
	}
	datPath := filepath.Join(boardDir, threadID+".dat")

	req := httpclient.Request{
		URL:        b.DatURL(threadID),
		Method:     httpclient.MethodGet,
		ProxyMode:  proxymanager.Read,
		AcceptGzip: true,
	}
	if prevSize > 0 {
		req.Range = fmt.Sprintf("bytes=%d-", prevSize)
	}
	if hasPrevLastMod {
		if t, err := time.Parse(time.RFC3339, prevLastModified); err == nil {
			req.IfModifiedSince = t
		}
	}

	resp, err := s.client.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("cache: fetch dat: %w", err)
	}

	result := &FetchResult{}
	if resp.HasLastMod {
		result.LastModified = resp.LastModified.UTC().Format(time.RFC3339)
		result.HasLastMod = true
	}

	switch resp.Status {
	case http.StatusOK:
		result.Outcome = OutcomeFullReplace
		if err := writeDatFile(datPath, resp.Body, 0o600); err != nil {
			return nil, err
		}
		result.NewSize = int64(len(resp.Body))
	case http.StatusPartialContent:
		result.Outcome = OutcomeAppended
		if err := appendDatFile(datPath, resp.Body); err != nil {
			return nil, err
		}
		result.NewSize = prevSize + int64(len(resp.Body))
	case http.StatusNotModified:
		result.Outcome = OutcomeUnchanged
		result.NewSize = prevSize
		result.LastModified = prevLastModified
		result.HasLastMod = hasPrevLastMod
	case http.StatusRequestedRangeNotSatisfiable:
		result.Outcome = OutcomeRebuildNeeded
		markDatCorrupt(datPath)
		return result, nil
	default:
		return nil, fmt.Errorf("cache: fetch dat: unexpected status %d", resp.Status)
	}

	raw, err := os.ReadFile(datPath) // #nosec G304 -- datPath is derived from caller-controlled dataDir + threadID
	if err != nil {
		return nil, fmt.Errorf("cache: read dat after fetch: %w", err)
	}
	text, err := codec.Decode(raw, b.ReadCharset(), true)
	if err != nil {
		return nil, fmt.Errorf("cache: decode dat: %w", err)
	}
	if len(replaceRules) > 0 {
		text = ApplyDatReplaceRules(text, replaceRules)
	}

	var responses []parser.Res
	if b.BoardType == board.TypeJBBS {
		responses, err = parser.ParseDat7(text)
	} else if b.BoardType == board.TypeMachiBBS {
		responses, err = parser.ParseMachiOfflaw(text)
	} else {
		responses, err = parser.ParseDat5(text)
	}
	if err != nil {
		return nil, fmt.Errorf("cache: parse dat: %w", err)
	}
	result.Responses = responses

	if result.Outcome != OutcomeRebuildNeeded {
		if err := s.updateFolderIdx(boardDir, threadID, result, responses); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// updateFolderIdx persists the Size/Count/LastModified a fetch just observed
// back into Folder.idx, inserting a new row if the thread was not indexed
// yet (e.g. its first fetch-dat before any subject.txt round ever saw it).
func (s *Store) updateFolderIdx(boardDir, threadID string, result *FetchResult, responses []parser.Res) error {
	idxPath := filepath.Join(boardDir, "Folder.idx")
	rows, err := LoadFolderIdx(idxPath)
	if err != nil {
		return fmt.Errorf("cache: load Folder.idx: %w", err)
	}

	fileName := threadID + ".dat"
	for i := range rows {
		if rows[i].FileName == fileName {
			rows[i].Size = result.NewSize
			rows[i].Count = len(responses)
			rows[i].LastModified = parseRFC3339OrZero(result.LastModified)
			rows[i].HasLastModified = result.HasLastMod
			if err := SaveFolderIdx(idxPath, rows); err != nil {
				return fmt.Errorf("cache: save Folder.idx: %w", err)
			}
			return nil
		}
	}

	row := ThreadIndex{
		No:              len(rows) + 1,
		FileName:        fileName,
		Count:           len(responses),
		Size:            result.NewSize,
		LastModified:    parseRFC3339OrZero(result.LastModified),
		HasLastModified: result.HasLastMod,
		Kokomade:        -1,
	}
	if len(responses) > 0 {
		row.Title = responses[0].Title
	}
	rows = append(rows, row)
	if err := SaveFolderIdx(idxPath, rows); err != nil {
		return fmt.Errorf("cache: save Folder.idx: %w", err)
	}
	return nil
}

func parseRFC3339OrZero(s string) time.Time {
	t, _ := parseTime(s)
	return t
}

// FetchOyster fetches b's archived ("oyster"/kako) copy of threadID using an
// UPLIFT session token, per spec §6's `{serverUrl}{bbsId}/kako/...` shape.
// Archived threads never change, so this is always a full fetch: no Range,
// no If-Modified-Since, and the result always classifies as a full replace.
// The thread is cached and indexed exactly like a live FetchDat result.
func (s *Store) FetchOyster(ctx context.Context, b board.Board, threadID, sid string) (*FetchResult, error) {
	boardDir := BoardDir(s.dataDir, b.URL)
	unlock := s.locks.Lock(boardDir)
	defer unlock()

	if err := os.MkdirAll(boardDir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: create board dir: %w", err)
	}
	datPath := filepath.Join(boardDir, threadID+".dat")

	resp, err := s.client.Fetch(ctx, httpclient.Request{
		URL:        b.OysterURL(threadID, sid),
		Method:     httpclient.MethodGet,
		ProxyMode:  proxymanager.Read,
		AcceptGzip: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: fetch oyster dat: %w", err)
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("cache: fetch oyster dat: unexpected status %d", resp.Status)
	}

	result := &FetchResult{Outcome: OutcomeFullReplace, NewSize: int64(len(resp.Body))}
	if resp.HasLastMod {
		result.LastModified = resp.LastModified.UTC().Format(time.RFC3339)
		result.HasLastMod = true
	}
	if err := writeDatFile(datPath, resp.Body, 0o600); err != nil {
		return nil, err
	}

	text, err := codec.Decode(resp.Body, b.ReadCharset(), true)
	if err != nil {
		return nil, fmt.Errorf("cache: decode oyster dat: %w", err)
	}
	responses, err := parser.ParseDat5(text)
	if err != nil {
		return nil, fmt.Errorf("cache: parse oyster dat: %w", err)
	}
	result.Responses = responses

	if err := s.updateFolderIdx(boardDir, threadID, result, responses); err != nil {
		return nil, err
	}
	return result, nil
}

// markDatCorrupt renames path aside so a later rebuild does not silently
// trust a file a 416 response has told us is out of sync with the server.
// Absence of the file (nothing to rename) is not an error.
func markDatCorrupt(path string) {
	_ = os.Rename(path, path+".corrupt")
}

func writeDatFile(path string, body []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, perm); err != nil { // #nosec G306 -- perm is explicitly 0600
		return fmt.Errorf("cache: write dat temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: rename dat temp file: %w", err)
	}
	return nil
}

func appendDatFile(path string, body []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path is derived from caller-controlled dataDir
	if err != nil {
		return fmt.Errorf("cache: open dat for append: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("cache: append dat: %w", err)
	}
	return nil
}
