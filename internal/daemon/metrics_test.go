package daemon

import (
	"sync"
	"testing"
	"time"
)

// ============================================================================
// Basic Metrics Tests
// ============================================================================

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("Expected NewMetrics to return non-nil")
	}

	// Verify all counters start at zero
	if m.GetEventsSent() != 0 {
		t.Errorf("Expected EventsSent to be 0, got %d", m.GetEventsSent())
	}
	if m.GetEventsReceived() != 0 {
		t.Errorf("Expected EventsReceived to be 0, got %d", m.GetEventsReceived())
	}
	if m.GetCommitsApplied() != 0 {
		t.Errorf("Expected CommitsApplied to be 0, got %d", m.GetCommitsApplied())
	}
	if m.GetCommitsRejected() != 0 {
		t.Errorf("Expected CommitsRejected to be 0, got %d", m.GetCommitsRejected())
	}
	if m.GetBroadcastsTotal() != 0 {
		t.Errorf("Expected BroadcastsTotal to be 0, got %d", m.GetBroadcastsTotal())
	}
	if m.GetConnectedClients() != 0 {
		t.Errorf("Expected ConnectedClients to be 0, got %d", m.GetConnectedClients())
	}

	// Verify StartTime is set to a recent time (within last second)
	if time.Since(m.StartTime) > time.Second {
		t.Errorf("Expected StartTime to be recent, got %v", m.StartTime)
	}

	t.Logf("✓ Metrics initialized correctly: %+v", m.GetSnapshot())
}

func TestIncEventsSent(t *testing.T) {
	m := NewMetrics()

	// Increment once
	m.IncEventsSent()
	if m.GetEventsSent() != 1 {
		t.Errorf("Expected EventsSent to be 1, got %d", m.GetEventsSent())
	}

	// Increment multiple times
	for i := 0; i < 10; i++ {
		m.IncEventsSent()
	}
	if m.GetEventsSent() != 11 {
		t.Errorf("Expected EventsSent to be 11, got %d", m.GetEventsSent())
	}

	t.Logf("✓ EventsSent incremented correctly: %d", m.GetEventsSent())
}

func TestIncEventsReceived(t *testing.T) {
	m := NewMetrics()

	m.IncEventsReceived()
	if m.GetEventsReceived() != 1 {
		t.Errorf("Expected EventsReceived to be 1, got %d", m.GetEventsReceived())
	}

	for i := 0; i < 5; i++ {
		m.IncEventsReceived()
	}
	if m.GetEventsReceived() != 6 {
		t.Errorf("Expected EventsReceived to be 6, got %d", m.GetEventsReceived())
	}

	t.Logf("✓ EventsReceived incremented correctly: %d", m.GetEventsReceived())
}

func TestIncCommitCounters(t *testing.T) {
	m := NewMetrics()

	m.IncCommitsApplied()
	if m.GetCommitsApplied() != 1 {
		t.Errorf("Expected CommitsApplied to be 1, got %d", m.GetCommitsApplied())
	}

	for i := 0; i < 3; i++ {
		m.IncCommitsRejected()
	}
	if m.GetCommitsRejected() != 3 {
		t.Errorf("Expected CommitsRejected to be 3, got %d", m.GetCommitsRejected())
	}

	t.Logf("✓ Commit counters incremented correctly: applied=%d rejected=%d",
		m.GetCommitsApplied(), m.GetCommitsRejected())
}

func TestIncBroadcastsTotal(t *testing.T) {
	m := NewMetrics()

	m.IncBroadcastsTotal()
	if m.GetBroadcastsTotal() != 1 {
		t.Errorf("Expected BroadcastsTotal to be 1, got %d", m.GetBroadcastsTotal())
	}

	for i := 0; i < 20; i++ {
		m.IncBroadcastsTotal()
	}
	if m.GetBroadcastsTotal() != 21 {
		t.Errorf("Expected BroadcastsTotal to be 21, got %d", m.GetBroadcastsTotal())
	}

	t.Logf("✓ BroadcastsTotal incremented correctly: %d", m.GetBroadcastsTotal())
}

func TestSetConnectedClients(t *testing.T) {
	m := NewMetrics()

	// Set to various values
	m.SetConnectedClients(5)
	if m.GetConnectedClients() != 5 {
		t.Errorf("Expected ConnectedClients to be 5, got %d", m.GetConnectedClients())
	}

	m.SetConnectedClients(0)
	if m.GetConnectedClients() != 0 {
		t.Errorf("Expected ConnectedClients to be 0, got %d", m.GetConnectedClients())
	}

	m.SetConnectedClients(100)
	if m.GetConnectedClients() != 100 {
		t.Errorf("Expected ConnectedClients to be 100, got %d", m.GetConnectedClients())
	}

	t.Logf("✓ ConnectedClients set correctly: %d", m.GetConnectedClients())
}

func TestGetSnapshot(t *testing.T) {
	m := NewMetrics()

	// Set some values
	m.IncEventsSent()
	m.IncEventsSent()
	m.IncEventsReceived()
	m.IncCommitsApplied()
	m.IncBroadcastsTotal()
	m.SetConnectedClients(3)

	// Give it a moment so uptime is measurable
	time.Sleep(10 * time.Millisecond)

	snapshot := m.GetSnapshot()

	// Verify all fields
	if snapshot.EventsSent != 2 {
		t.Errorf("Expected EventsSent to be 2, got %d", snapshot.EventsSent)
	}
	if snapshot.EventsReceived != 1 {
		t.Errorf("Expected EventsReceived to be 1, got %d", snapshot.EventsReceived)
	}
	if snapshot.CommitsApplied != 1 {
		t.Errorf("Expected CommitsApplied to be 1, got %d", snapshot.CommitsApplied)
	}
	if snapshot.BroadcastsTotal != 1 {
		t.Errorf("Expected BroadcastsTotal to be 1, got %d", snapshot.BroadcastsTotal)
	}
	if snapshot.ConnectedClients != 3 {
		t.Errorf("Expected ConnectedClients to be 3, got %d", snapshot.ConnectedClients)
	}

	// Verify StartTime matches
	if !snapshot.StartTime.Equal(m.StartTime) {
		t.Errorf("Expected StartTime to match, got %v vs %v", snapshot.StartTime, m.StartTime)
	}

	// Verify Uptime is populated and reasonable
	if snapshot.Uptime == "" {
		t.Error("Expected Uptime to be populated")
	}
	t.Logf("✓ Uptime: %s", snapshot.Uptime)

	// Verify uptime is at least the sleep duration
	expectedUptime := 10 * time.Millisecond
	actualUptime := time.Since(m.StartTime)
	if actualUptime < expectedUptime {
		t.Errorf("Expected uptime >= %v, got %v", expectedUptime, actualUptime)
	}

	t.Logf("✓ Snapshot captured correctly: %+v", snapshot)
}

// ============================================================================
// Concurrency Tests (Race Detector)
// ============================================================================

func TestMetricsConcurrency_AllOperations(t *testing.T) {
	m := NewMetrics()

	// Number of goroutines and operations per goroutine
	numGoroutines := 100
	opsPerGoroutine := 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines * 5) // 5 different operations

	// Concurrently increment EventsSent
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				m.IncEventsSent()
			}
		}()
	}

	// Concurrently increment EventsReceived
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				m.IncEventsReceived()
			}
		}()
	}

	// Concurrently increment CommitsApplied
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				m.IncCommitsApplied()
			}
		}()
	}

	// Concurrently increment BroadcastsTotal
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				m.IncBroadcastsTotal()
			}
		}()
	}

	// Concurrently set ConnectedClients
	for i := 0; i < numGoroutines; i++ {
		go func(val int32) {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				m.SetConnectedClients(val)
			}
		}(int32(i))
	}

	wg.Wait()

	// Verify counts are correct
	expectedCount := int64(numGoroutines * opsPerGoroutine)
	if m.GetEventsSent() != expectedCount {
		t.Errorf("Expected EventsSent to be %d, got %d", expectedCount, m.GetEventsSent())
	}
	if m.GetEventsReceived() != expectedCount {
		t.Errorf("Expected EventsReceived to be %d, got %d", expectedCount, m.GetEventsReceived())
	}
	if m.GetCommitsApplied() != expectedCount {
		t.Errorf("Expected CommitsApplied to be %d, got %d", expectedCount, m.GetCommitsApplied())
	}
	if m.GetBroadcastsTotal() != expectedCount {
		t.Errorf("Expected BroadcastsTotal to be %d, got %d", expectedCount, m.GetBroadcastsTotal())
	}

	// ConnectedClients is set (not incremented), so it should be one of the values
	clientCount := m.GetConnectedClients()
	if clientCount < 0 || clientCount >= int32(numGoroutines) {
		t.Errorf("Expected ConnectedClients to be in range [0, %d), got %d", numGoroutines, clientCount)
	}

	t.Logf("✓ Concurrent operations completed successfully")
	t.Logf("  Final counts: EventsSent=%d, EventsReceived=%d, CommitsApplied=%d, BroadcastsTotal=%d, ConnectedClients=%d",
		m.GetEventsSent(), m.GetEventsReceived(), m.GetCommitsApplied(), m.GetBroadcastsTotal(), m.GetConnectedClients())
}

func TestMetricsConcurrency_ReadWhileWrite(t *testing.T) {
	m := NewMetrics()

	stopChan := make(chan struct{})
	var wg sync.WaitGroup

	// Start writers
	wg.Add(10)
	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stopChan:
					return
				default:
					m.IncEventsSent()
					m.IncEventsReceived()
					m.IncBroadcastsTotal()
					m.SetConnectedClients(5)
				}
			}
		}()
	}

	// Start readers
	wg.Add(10)
	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stopChan:
					return
				default:
					_ = m.GetEventsSent()
					_ = m.GetEventsReceived()
					_ = m.GetBroadcastsTotal()
					_ = m.GetConnectedClients()
					_ = m.GetSnapshot()
				}
			}
		}()
	}

	// Run for 100ms
	time.Sleep(100 * time.Millisecond)
	close(stopChan)
	wg.Wait()

	snapshot := m.GetSnapshot()
	t.Logf("✓ Concurrent read/write operations completed successfully")
	t.Logf("  Final snapshot: %+v", snapshot)

	// Verify metrics are reasonable (non-negative, etc.)
	if snapshot.EventsSent < 0 {
		t.Errorf("EventsSent should not be negative: %d", snapshot.EventsSent)
	}
	if snapshot.EventsReceived < 0 {
		t.Errorf("EventsReceived should not be negative: %d", snapshot.EventsReceived)
	}
	if snapshot.BroadcastsTotal < 0 {
		t.Errorf("BroadcastsTotal should not be negative: %d", snapshot.BroadcastsTotal)
	}
}

func TestMetricsSnapshot_IsImmutable(t *testing.T) {
	m := NewMetrics()

	m.IncEventsSent()
	snapshot1 := m.GetSnapshot()

	// Change metrics after taking snapshot
	m.IncEventsSent()
	m.IncEventsSent()

	// Verify snapshot hasn't changed
	if snapshot1.EventsSent != 1 {
		t.Errorf("Snapshot should be immutable, expected EventsSent=1, got %d", snapshot1.EventsSent)
	}

	// Take another snapshot
	snapshot2 := m.GetSnapshot()
	if snapshot2.EventsSent != 3 {
		t.Errorf("Second snapshot should reflect changes, expected EventsSent=3, got %d", snapshot2.EventsSent)
	}

	t.Logf("✓ Snapshots are immutable and independent")
}
