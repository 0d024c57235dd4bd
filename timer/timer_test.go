package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_ScheduleFires(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	m.Schedule(20*time.Millisecond, func() { atomic.StoreInt32(&fired, 1) })

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&fired) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Scheduled task never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManager_CancelPreventsFiring(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int32
	id := m.Schedule(50*time.Millisecond, func() { atomic.StoreInt32(&fired, 1) })
	m.Cancel(id)

	time.Sleep(150 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Canceled task should not fire")
	}
}

func TestManager_SleepRespectsContext(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	m.Sleep(ctx, 5*time.Second)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Sleep should wake on context cancel, took %v", elapsed)
	}
}

func TestManager_SleepZeroReturnsImmediately(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	start := time.Now()
	m.Sleep(context.Background(), 0)
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Sleep(0) should return immediately")
	}
}
