// Package mmap provides anonymous memory mappings for off-heap page storage.
//
// # Overview
//
// Anonymous mappings obtain large, zero-filled memory regions directly from
// the operating system. Pages carved from such regions never enter the Go
// heap, which keeps multi-gigabyte page tables out of garbage collector
// scans.
//
// # Usage
//
//	m, err := mmap.MapAnon(size)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with MAP_ANON and madvise(2) hints
//   - Windows: Uses VirtualAlloc (madvise is a no-op)
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. The Close() method is
// idempotent and protected by atomic operations. However, callers must
// ensure no goroutines access Bytes() after Close() returns.
package mmap
