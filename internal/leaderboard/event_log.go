package leaderboard

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize    = 1024                   // Circular buffer size
	MaxEventsPerSec    = 10000                  // Global rate limit
	MaxEventsPerKey    = 100                    // Per-key rate limit per second
	BatchFlushSize     = 64                     // Events per batch write
	BatchFlushInterval = 100 * time.Millisecond // How often to flush
	KeyLimiterCleanup  = 5 * time.Minute        // Cleanup interval for per-key limiters
)

// AuditLog is a bounded, rate-limited event log with backpressure. It
// records every leaderboard mutation as newline-delimited JSON without
// ever blocking the caller for disk I/O.
type AuditLog struct {
	buffer    [EventBufferSize]RankEvent
	writeHead uint64 // atomic - producer position
	readHead  uint64 // atomic - consumer position

	globalLimiter *rate.Limiter
	keyLimiters   sync.Map // map[string]*keyLimiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// keyLimiterEntry tracks per-key rate limiting.
type keyLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewAuditLog creates a bounded audit log. Call Start to begin writing.
func NewAuditLog() *AuditLog {
	return &AuditLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the async writer goroutine, appending newline-delimited
// JSON to filePath. An empty filePath disables file output while still
// tracking stats.
func (al *AuditLog) Start(filePath string) error {
	if al.running.Load() {
		return nil
	}

	al.filePath = filePath

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		al.file = file
	}

	al.running.Store(true)
	al.writerWg.Add(2)
	go al.writerLoop()
	go al.cleanupLoop()

	return nil
}

// Stop gracefully shuts down the audit log, flushing any buffered events.
func (al *AuditLog) Stop() {
	al.stopOnce.Do(func() {
		al.running.Store(false)
		close(al.stopChan)
		al.writerWg.Wait()

		al.fileMu.Lock()
		if al.file != nil {
			al.file.Close()
		}
		al.fileMu.Unlock()
	})
}

// Emit records an event, subject to global and per-key rate limiting.
// Returns false if the event was dropped.
func (al *AuditLog) Emit(event RankEvent) bool {
	if !al.running.Load() {
		return false
	}

	if !al.globalLimiter.Allow() {
		atomic.AddUint64(&al.droppedCount, 1)
		return false
	}

	if event.Key != "" {
		limiter := al.getKeyLimiter(event.Key)
		if !limiter.Allow() {
			atomic.AddUint64(&al.droppedCount, 1)
			return false
		}
	}

	head := atomic.AddUint64(&al.writeHead, 1)
	tail := atomic.LoadUint64(&al.readHead)

	if head-tail >= EventBufferSize {
		atomic.AddUint64(&al.readHead, 1)
		atomic.AddUint64(&al.droppedCount, 1)
	}

	event.Sequence = head
	idx := head % EventBufferSize
	al.buffer[idx] = event

	atomic.AddUint64(&al.totalCount, 1)
	return true
}

func (al *AuditLog) getKeyLimiter(key string) *rate.Limiter {
	if entry, ok := al.keyLimiters.Load(key); ok {
		e := entry.(*keyLimiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}

	entry := &keyLimiterEntry{
		limiter:  rate.NewLimiter(MaxEventsPerKey, MaxEventsPerKey/10),
		lastUsed: time.Now(),
	}
	actual, _ := al.keyLimiters.LoadOrStore(key, entry)
	return actual.(*keyLimiterEntry).limiter
}

func (al *AuditLog) writerLoop() {
	defer al.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]RankEvent, 0, BatchFlushSize)

	for {
		select {
		case <-al.stopChan:
			for {
				batch = al.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				al.flushBatch(batch)
			}

		case <-ticker.C:
			batch = al.collectBatch(batch[:0])
			if len(batch) > 0 {
				al.flushBatch(batch)
			}
		}
	}
}

func (al *AuditLog) cleanupLoop() {
	defer al.writerWg.Done()

	ticker := time.NewTicker(KeyLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-al.stopChan:
			return
		case <-ticker.C:
			al.cleanupKeyLimiters()
		}
	}
}

func (al *AuditLog) cleanupKeyLimiters() {
	cutoff := time.Now().Add(-KeyLimiterCleanup)
	al.keyLimiters.Range(func(key, value interface{}) bool {
		entry := value.(*keyLimiterEntry)
		if entry.lastUsed.Before(cutoff) {
			al.keyLimiters.Delete(key)
		}
		return true
	})
}

func (al *AuditLog) collectBatch(batch []RankEvent) []RankEvent {
	head := atomic.LoadUint64(&al.writeHead)
	tail := atomic.LoadUint64(&al.readHead)

	for i := tail; i < head && len(batch) < BatchFlushSize; i++ {
		idx := i % EventBufferSize
		batch = append(batch, al.buffer[idx])
	}

	if len(batch) > 0 {
		atomic.AddUint64(&al.readHead, uint64(len(batch)))
	}

	return batch
}

func (al *AuditLog) flushBatch(batch []RankEvent) {
	al.fileMu.Lock()
	defer al.fileMu.Unlock()

	if al.file == nil {
		return
	}

	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		al.file.Write(data)
		al.file.Write([]byte("\n"))
	}
}

// Stats summarizes audit log health for monitoring.
type Stats struct {
	Total   uint64
	Dropped uint64
	Pending uint64
	Running bool
}

// GetStats returns current audit log stats.
func (al *AuditLog) GetStats() Stats {
	head := atomic.LoadUint64(&al.writeHead)
	tail := atomic.LoadUint64(&al.readHead)

	return Stats{
		Total:   atomic.LoadUint64(&al.totalCount),
		Dropped: atomic.LoadUint64(&al.droppedCount),
		Pending: head - tail,
		Running: al.running.Load(),
	}
}
