package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	"github.com/allisson/inspecta/internal/cache/store"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
)

// report mirrors an inspection report as returned by the remote API.
type report struct {
	ID           mutationDomain.ID `json:"id"`
	InspectionID int               `json:"inspection_id"`
	Description  string            `json:"description"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
}

var reportsKey = cacheDomain.NewKey("report", "inspection_id", "1")

const seededReports = `[{"id":10,"inspection_id":1,"description":"existing"}]`

func newTestSynchronizer(t *testing.T) (*Synchronizer, *store.MemoryStore) {
	t.Helper()
	handle := store.NewMemoryStore(0, 0)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSynchronizer(handle, logger), handle
}

func seed(t *testing.T, handle cacheDomain.Handle, key cacheDomain.Key, value string) *cacheDomain.Entry {
	t.Helper()
	entry, err := handle.Write(context.Background(), key, json.RawMessage(value), cacheDomain.StatusFresh)
	require.NoError(t, err)
	return entry
}

func readReports(t *testing.T, handle cacheDomain.Handle, key cacheDomain.Key) ([]report, *cacheDomain.Entry) {
	t.Helper()
	entry, err := handle.Read(context.Background(), key)
	require.NoError(t, err)
	var reports []report
	require.NoError(t, entry.Decode(&reports))
	return reports, entry
}

func createDescriptor(payload string) mutationDomain.Descriptor {
	return mutationDomain.Descriptor{
		Entity:     "report",
		Operation:  mutationDomain.OperationCreate,
		Payload:    json.RawMessage(payload),
		Keys:       []cacheDomain.Key{reportsKey},
		Optimistic: true,
	}
}

func updateDescriptor(id, patch string) mutationDomain.Descriptor {
	return mutationDomain.Descriptor{
		Entity:     "report",
		Operation:  mutationDomain.OperationUpdate,
		ID:         id,
		Payload:    json.RawMessage(patch),
		Keys:       []cacheDomain.Key{reportsKey},
		Optimistic: true,
	}
}

// gated returns a dispatch that blocks until release is closed and then returns the
// given response.
func gated(release <-chan struct{}, value string, err error) DispatchFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if err != nil {
			return nil, err
		}
		return json.RawMessage(value), nil
	}
}
