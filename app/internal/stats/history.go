package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// MaxSnapshots - сколько снимков хранит History.
const MaxSnapshots = 100

// History хранит последние снимки в памяти.
type History struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

// Add сохраняет s, отбрасывая самые старые снимки сверх MaxSnapshots.
func (h *History) Add(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, s)
	if len(h.snapshots) > MaxSnapshots {
		h.snapshots = h.snapshots[len(h.snapshots)-MaxSnapshots:]
	}
}

func (h *History) All() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Snapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// Fetch читает снимок с /stats работающего сервера.
func Fetch(ctx context.Context, client *http.Client, baseURL string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/stats", nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting stats")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var s Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decoding stats")
	}
	return &s, nil
}

// SaveSnapshot пишет s в dir в виде JSON и возвращает имя файла.
func SaveSnapshot(s Snapshot, dir string) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshalling snapshot")
	}
	filename := filepath.Join(dir, "stats_"+s.Timestamp.Format("20060102_150405")+".json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", errors.Wrap(err, "writing snapshot")
	}
	return filename, nil
}
