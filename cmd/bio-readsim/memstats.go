package main

import (
	"fmt"
	"runtime"
	"sync"
)

// memStats tracks the peak of a few runtime.MemStats fields.
type memStats struct {
	mu         sync.Mutex
	alloc      uint64
	totalAlloc uint64
	sys        uint64
	heapSys    uint64
}

func (m *memStats) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("Alloc: %v TotalAlloc: %v, Sys: %v, HeapSys: %v",
		m.alloc, m.totalAlloc, m.sys, m.heapSys)
}

func (m *memStats) update() {
	var s runtime.MemStats
	runtime.ReadMemStats(&s)
	m.mu.Lock()
	m.alloc = max(m.alloc, s.Alloc)
	m.totalAlloc = max(m.totalAlloc, s.TotalAlloc)
	m.sys = max(m.sys, s.Sys)
	m.heapSys = max(m.heapSys, s.HeapSys)
	m.mu.Unlock()
}
