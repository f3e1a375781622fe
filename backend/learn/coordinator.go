package learn

import (
	"sync"
	"time"
)

// GenerationRecord is the last recorded generation failure for a
// course. The UI decides how to surface it; the engine only stores it.
type GenerationRecord struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Coordinator tracks in-flight generation work per course id plus the
// single auto-regroup slot. The boolean flags reject logically
// concurrent duplicates (a double-clicked "Continue"); they are not
// queues, and a rejected caller fails immediately.
type Coordinator struct {
	mu             sync.Mutex
	generating     map[string]bool
	failures       map[string]GenerationRecord
	autoRegrouping bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		generating: make(map[string]bool),
		failures:   make(map[string]GenerationRecord),
	}
}

// SetGenerating toggles the per-course flag. Callers pair the set and
// clear around the generation call (defer the clear).
func (c *Coordinator) SetGenerating(courseID string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.generating[courseID] = true
	} else {
		delete(c.generating, courseID)
	}
}

// beginGeneration atomically checks and sets the flag.
func (c *Coordinator) beginGeneration(courseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generating[courseID] {
		return &AlreadyInProgressError{Op: "generation", Key: courseID}
	}
	c.generating[courseID] = true
	return nil
}

func (c *Coordinator) IsGenerating(courseID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating[courseID]
}

// SetGenerationError records a failure for the course. An empty
// message clears the record, signalling a retry is starting or that a
// later save succeeded.
func (c *Coordinator) SetGenerationError(courseID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if message == "" {
		delete(c.failures, courseID)
		return
	}
	c.failures[courseID] = GenerationRecord{Message: message, Timestamp: time.Now()}
}

// GenerationError returns the recorded failure, or nil.
func (c *Coordinator) GenerationError(courseID string) *GenerationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.failures[courseID]
	if !ok {
		return nil
	}
	return &rec
}

// BeginAutoRegroup claims the regroup slot; false means one is already
// running.
func (c *Coordinator) BeginAutoRegroup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.autoRegrouping {
		return false
	}
	c.autoRegrouping = true
	return true
}

func (c *Coordinator) EndAutoRegroup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoRegrouping = false
}

func (c *Coordinator) IsAutoRegrouping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoRegrouping
}
