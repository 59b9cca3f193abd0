package cache

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/util"
)

// ThreadIndex is one Folder.idx row: per-thread persistent cache metadata.
type ThreadIndex struct {
	No               int
	FileName         string
	Title            string
	Count            int
	Size             int64
	RoundDate        time.Time
	HasRoundDate     bool
	LastModified     time.Time
	HasLastModified  bool
	Kokomade         int // -1 = unread
	NewReceive       int
	UnRead           int
	ScrollTop        int
	ScrollResNumber  int
	ScrollResOffset  int
	AllResCount      int
	NewResCount      int
	AgeSage          int // 0..4
}

const threadIndexFieldCount = 16

// escapeIdxField sanitizes a Folder.idx string field: "&" then "\"" are
// escaped, in that order, so the inverse on read (quot before amp) never
// double-unescapes.
func escapeIdxField(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

func unescapeIdxField(s string) string {
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

func formatTime(t time.Time, has bool) string {
	if !has {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// encodeThreadIndexLine renders one ThreadIndex as a TAB-separated Folder.idx
// row, field order matching spec §3.
func encodeThreadIndexLine(r ThreadIndex) string {
	fields := []string{
		strconv.Itoa(r.No),
		escapeIdxField(r.FileName),
		escapeIdxField(r.Title),
		strconv.Itoa(r.Count),
		strconv.FormatInt(r.Size, 10),
		formatTime(r.RoundDate, r.HasRoundDate),
		formatTime(r.LastModified, r.HasLastModified),
		strconv.Itoa(r.Kokomade),
		strconv.Itoa(r.NewReceive),
		strconv.Itoa(r.UnRead),
		strconv.Itoa(r.ScrollTop),
		strconv.Itoa(r.ScrollResNumber),
		strconv.Itoa(r.ScrollResOffset),
		strconv.Itoa(r.AllResCount),
		strconv.Itoa(r.NewResCount),
		strconv.Itoa(r.AgeSage),
	}
	return strings.Join(fields, "\t")
}

// decodeThreadIndexLine parses one Folder.idx row.
func decodeThreadIndexLine(line string) (ThreadIndex, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != threadIndexFieldCount {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx line: expected %d fields, got %d", threadIndexFieldCount, len(fields))
	}
	var r ThreadIndex
	var err error
	if r.No, err = strconv.Atoi(fields[0]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid no: %w", err)
	}
	r.FileName = unescapeIdxField(fields[1])
	r.Title = unescapeIdxField(fields[2])
	if r.Count, err = strconv.Atoi(fields[3]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid count: %w", err)
	}
	if r.Size, err = strconv.ParseInt(fields[4], 10, 64); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid size: %w", err)
	}
	r.RoundDate, r.HasRoundDate = parseTime(fields[5])
	r.LastModified, r.HasLastModified = parseTime(fields[6])
	if r.Kokomade, err = strconv.Atoi(fields[7]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid kokomade: %w", err)
	}
	if r.NewReceive, err = strconv.Atoi(fields[8]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid newReceive: %w", err)
	}
	if r.UnRead, err = strconv.Atoi(fields[9]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid unRead: %w", err)
	}
	if r.ScrollTop, err = strconv.Atoi(fields[10]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid scrollTop: %w", err)
	}
	if r.ScrollResNumber, err = strconv.Atoi(fields[11]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid scrollResNumber: %w", err)
	}
	if r.ScrollResOffset, err = strconv.Atoi(fields[12]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid scrollResOffset: %w", err)
	}
	if r.AllResCount, err = strconv.Atoi(fields[13]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid allResCount: %w", err)
	}
	if r.NewResCount, err = strconv.Atoi(fields[14]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid newResCount: %w", err)
	}
	if r.AgeSage, err = strconv.Atoi(fields[15]); err != nil {
		return ThreadIndex{}, fmt.Errorf("cache: Folder.idx: invalid ageSage: %w", err)
	}
	return r, nil
}

// LoadFolderIdx reads every thread row from the Folder.idx at path. A
// missing file is not an error: it simply yields no rows.
func LoadFolderIdx(path string) ([]ThreadIndex, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from caller-controlled dataDir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: read Folder.idx: %w", err)
	}
	var out []ThreadIndex
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		row, err := decodeThreadIndexLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// SaveFolderIdx writes rows to path atomically (temp file + rename),
// satisfying spec invariant 6.
func SaveFolderIdx(path string, rows []ThreadIndex) error {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, encodeThreadIndexLine(r))
	}
	data := []byte(strings.Join(lines, "\n"))
	if len(data) > 0 {
		data = append(data, '\n')
	}
	return util.WriteFileAtomic(path, data, 0o600)
}
