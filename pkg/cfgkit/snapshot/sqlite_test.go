package snapshot_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSQLiteStore_Persistence verifies envelopes survive reopening the file.
func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")

	saved := envelope(t, "svc", "v1", 4, "persistent: true")
	first, err := snapshot.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Save(saved))
	require.NoError(t, first.Close())

	second, err := snapshot.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	loaded, err := second.Load("svc", "v1")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, 4, loaded.Loads)
	assert.JSONEq(t, `{"persistent": true}`, string(loaded.Tree))

	require.NoError(t, second.Save(envelope(t, "svc", "v2", 5, "next: 1")))
	infos, err := second.List("svc")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 2, infos[1].Sequence, "sequence continues after reopen")
}

// TestSQLiteStore_InvalidPath verifies an unopenable path fails.
func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := snapshot.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

// TestSQLiteStore_Concurrent verifies mixed access from many goroutines.
func TestSQLiteStore_Concurrent(t *testing.T) {
	st, err := snapshot.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer st.Close()

	const goroutines = 20
	const ops = 20

	snaps := make(map[string]*snapshot.Snapshot)
	for i := 0; i < 5; i++ {
		for j := 0; j < 4; j++ {
			name, label := fmt.Sprintf("svc-%d", i), fmt.Sprintf("v%d", j)
			snaps[name+"/"+label] = envelope(t, name, label, 1, "data: 1")
		}
	}

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("svc-%d", id%5)
			for j := 0; j < ops; j++ {
				label := fmt.Sprintf("v%d", j%4)
				switch j % 3 {
				case 0:
					assert.NoError(t, st.Save(snaps[name+"/"+label]))
				case 1:
					_, _ = st.Load(name, label)
				case 2:
					_, err := st.List(name)
					assert.NoError(t, err)
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		infos, err := st.List(fmt.Sprintf("svc-%d", i))
		require.NoError(t, err)
		assert.NotEmpty(t, infos)
	}
}
