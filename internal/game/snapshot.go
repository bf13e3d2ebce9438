package game

import (
	"sync"
	"sync/atomic"

	"space-defender/internal/config"
	"space-defender/internal/protocol"
)

// SnapshotBuffer hands the latest wire snapshot to readers outside the tick
// goroutine (broadcast, the HTTP state API, spectators). The producer cycles
// through three pre-allocated snapshots so the per-tick build is
// allocation-free; concurrent readers get an independent copy under a read
// lock so a slot being rebuilt can never tear a snapshot already handed out.
type SnapshotBuffer struct {
	mu        sync.RWMutex
	snapshots [3]protocol.Snapshot
	writeIdx  uint32
	readIdx   uint32
	sequence  uint64 // atomic - monotonic publish count
}

// NewSnapshotBuffer pre-allocates entity slices at the configured caps so the
// per-tick snapshot build is allocation-free.
func NewSnapshotBuffer(limits config.ResourceLimits) *SnapshotBuffer {
	buf := &SnapshotBuffer{}
	for i := range buf.snapshots {
		buf.snapshots[i] = protocol.Snapshot{
			Players:  make([]protocol.PlayerState, 0, 2),
			Enemies:  make([]protocol.EnemyState, 0, limits.MaxEnemies),
			Bullets:  make([]protocol.BulletState, 0, limits.MaxBullets),
			PowerUps: make([]protocol.PowerUpState, 0, limits.MaxPowerUps),
		}
	}
	return buf
}

// AcquireWrite returns the next write slot with its slices reset but their
// capacity preserved. Producer only (tick goroutine). The write lock is held
// until the matching PublishWrite, keeping readers off the slot while it is
// being rebuilt.
func (b *SnapshotBuffer) AcquireWrite() *protocol.Snapshot {
	b.mu.Lock()
	b.writeIdx = (b.writeIdx + 1) % 3
	snap := &b.snapshots[b.writeIdx]

	snap.Players = snap.Players[:0]
	snap.Enemies = snap.Enemies[:0]
	snap.Bullets = snap.Bullets[:0]
	snap.PowerUps = snap.PowerUps[:0]
	snap.Score = 0
	snap.Coins = 0
	snap.Level = 0
	snap.TimeRemaining = 0
	snap.GameState = 0

	return snap
}

// PublishWrite makes the just-built snapshot visible to readers and releases
// the write lock taken by AcquireWrite.
func (b *SnapshotBuffer) PublishWrite() {
	b.readIdx = b.writeIdx
	atomic.AddUint64(&b.sequence, 1)
	b.mu.Unlock()
}

// Latest returns a copy of the most recently published snapshot. The bool is
// false until the first publish. The copy owns its slices, so callers can
// hold it across ticks.
func (b *SnapshotBuffer) Latest() (protocol.Snapshot, bool) {
	if atomic.LoadUint64(&b.sequence) == 0 {
		return protocol.Snapshot{}, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	src := &b.snapshots[b.readIdx]
	out := *src
	out.Players = append([]protocol.PlayerState(nil), src.Players...)
	out.Enemies = append([]protocol.EnemyState(nil), src.Enemies...)
	out.Bullets = append([]protocol.BulletState(nil), src.Bullets...)
	out.PowerUps = append([]protocol.PowerUpState(nil), src.PowerUps...)
	return out, true
}

// Sequence returns the number of snapshots published so far.
func (b *SnapshotBuffer) Sequence() uint64 {
	return atomic.LoadUint64(&b.sequence)
}
