package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordAndSnapshot(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordRequest("/api/visitors/verify", "POST", 200, 20*time.Millisecond)
	m.RecordRequest("/api/visitors/verify", "POST", 200, 30*time.Millisecond)
	m.RecordError("/api/visitors/verify", "POST", "VISITOR_CODE_INVALID")
	m.RecordVisitorEvent("checked_in")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/visitors/verify|POST|200"])
	assert.Equal(t, int64(50), snap.LatencyMillis["/api/visitors/verify|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/visitors/verify|POST|VISITOR_CODE_INVALID"])
	assert.Equal(t, int64(1), snap.VisitorEvents["checked_in"])
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordVisitorEvent("issued")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestMetrics_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordVisitorEvent("issued")
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), m.Snapshot().VisitorEvents["issued"])
}
