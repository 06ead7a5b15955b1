package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/GhadiSaab/savedfeast-client/internal/models"
)

const ExpiredLabel = "Expired"

// WarningThreshold is the remaining time under which the countdown reports
// warning severity.
const WarningThreshold = 5 * time.Minute

type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityExpired
)

// Snapshot is one tick of the countdown.
type Snapshot struct {
	Remaining time.Duration
	Display   string
	Severity  Severity
}

// TargetFor selects which timestamp the countdown runs against for an
// order: the claim expiry once a pickup code exists, otherwise the pickup
// window end. Returns false when the order has nothing to count down to.
func TargetFor(order *models.Order, claim *models.ClaimCode) (time.Time, bool) {
	if order == nil {
		return time.Time{}, false
	}
	if order.Status == models.OrderStatusReadyForPickup && claim != nil && !claim.ExpiresAt.IsZero() {
		return claim.ExpiresAt, true
	}
	if order.Status.Terminal() {
		return time.Time{}, false
	}
	if order.PickupWindowEnd != nil {
		return *order.PickupWindowEnd, true
	}
	return time.Time{}, false
}

// Format renders a remaining duration as "1h 5m 3s", "5m 3s" or "3s",
// dropping leading zero units. Anything at or below zero is the expired
// label.
func Format(remaining time.Duration) string {
	if remaining <= 0 {
		return ExpiredLabel
	}

	total := int(remaining / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// SnapshotAt computes the countdown state for a target at a given instant.
func SnapshotAt(target, now time.Time) Snapshot {
	remaining := target.Sub(now).Truncate(time.Second)
	if remaining <= 0 {
		return Snapshot{Remaining: 0, Display: ExpiredLabel, Severity: SeverityExpired}
	}

	sev := SeverityNormal
	if remaining < WarningThreshold {
		sev = SeverityWarning
	}
	return Snapshot{Remaining: remaining, Display: Format(remaining), Severity: sev}
}

// Timer ticks once per second toward a target time and pushes a Snapshot
// per tick. After the target passes it emits the expired snapshot once,
// then closes its channel and stops ticking. Reset points it at a new
// target; Stop releases the ticker, the one resource here that needs
// explicit teardown.
type Timer struct {
	mu      sync.Mutex
	target  time.Time
	ch      chan Snapshot
	stop    chan struct{}
	stopped bool

	interval time.Duration
	now      func() time.Time
}

func NewTimer(target time.Time) *Timer {
	return newTimer(target, time.Second, time.Now)
}

func newTimer(target time.Time, interval time.Duration, now func() time.Time) *Timer {
	t := &Timer{
		target:   target,
		ch:       make(chan Snapshot, 1),
		stop:     make(chan struct{}),
		interval: interval,
		now:      now,
	}
	go t.run(t.ch, t.stop)
	return t
}

// C delivers one snapshot per tick. The channel is closed after the
// expired snapshot or after Stop.
func (t *Timer) C() <-chan Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ch
}

func (t *Timer) run(ch chan Snapshot, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer close(ch)

	for {
		t.mu.Lock()
		snap := SnapshotAt(t.target, t.now())
		t.mu.Unlock()

		if snap.Severity == SeverityExpired {
			// the final snapshot must not be lost; wait for the consumer
			select {
			case ch <- snap:
			case <-stop:
			}
			return
		}

		select {
		case ch <- snap:
		default:
			// drop the tick rather than block a slow consumer
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Reset retargets the countdown and restarts it, including after expiry.
func (t *Timer) Reset(target time.Time) {
	t.Stop()

	t.mu.Lock()
	t.target = target
	t.ch = make(chan Snapshot, 1)
	t.stop = make(chan struct{})
	t.stopped = false
	ch, stop := t.ch, t.stop
	t.mu.Unlock()

	go t.run(ch, stop)
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.stop)
}
