package aria2

import (
	"fmt"
	"strconv"
	"strings"
)

// Int64String decodes the engine's numeric fields, which arrive on the wire
// as decimal strings, while tolerating plain JSON numbers. All string-or-number
// tolerance lives here so the rest of the codebase works with typed values.
type Int64String int64

func (n *Int64String) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("numeric field %q: %w", s, err)
	}
	*n = Int64String(v)
	return nil
}

func (n Int64String) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(n), 10))), nil
}

// Int64 returns the plain integer value.
func (n Int64String) Int64() int64 { return int64(n) }

// TaskStatus is the engine's view of one download, as returned by
// aria2.tellStatus. Status is one of: active, waiting, paused, error,
// complete, removed.
type TaskStatus struct {
	GID             string      `json:"gid"`
	Status          string      `json:"status"`
	TotalLength     Int64String `json:"totalLength"`
	CompletedLength Int64String `json:"completedLength"`
	DownloadSpeed   Int64String `json:"downloadSpeed"`
	Connections     Int64String `json:"connections"`
	ErrorCode       string      `json:"errorCode,omitempty"`
	ErrorMessage    string      `json:"errorMessage,omitempty"`
	Dir             string      `json:"dir,omitempty"`
	Files           []FileEntry `json:"files,omitempty"`
}

// FileEntry describes one file belonging to a download.
type FileEntry struct {
	Path            string      `json:"path"`
	Length          Int64String `json:"length"`
	CompletedLength Int64String `json:"completedLength"`
}

// GlobalStat is the engine-wide aggregate report from aria2.getGlobalStat.
type GlobalStat struct {
	DownloadSpeed Int64String `json:"downloadSpeed"`
	UploadSpeed   Int64String `json:"uploadSpeed"`
	NumActive     Int64String `json:"numActive"`
	NumWaiting    Int64String `json:"numWaiting"`
	NumStopped    Int64String `json:"numStopped"`
}

// Options are the per-download engine options passed to aria2.addUri.
// The engine expects every value string-encoded.
type Options struct {
	Dir              string   `json:"dir,omitempty"`
	Out              string   `json:"out,omitempty"`
	Split            string   `json:"split,omitempty"`
	MaxDownloadLimit string   `json:"max-download-limit,omitempty"`
	Referer          string   `json:"referer,omitempty"`
	UserAgent        string   `json:"user-agent,omitempty"`
	Header           []string `json:"header,omitempty"`
}
