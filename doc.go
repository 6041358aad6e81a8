// Package hugego provides paged columnar storage for huge graphs.
//
// Hugego keeps billions of nodes and relationships in fixed-size pages,
// avoiding giant contiguous allocations and keeping GC pressure flat while
// an import is running. It is the storage half of a bulk graph loader:
// original node ids are compacted into a dense id space, adjacency lists are
// delta-encoded into arena pages, and node properties live in paged sparse
// columns.
//
// # Importing a Graph
//
// An import runs in two phases. Phase one records the original node ids;
// phase two loads adjacency and properties against the sealed id map:
//
//	ctx := context.Background()
//	sb := hugego.NewStoreBuilder(hugego.WithConcurrency(8))
//
//	// Phase one: record original ids, one worker set per goroutine.
//	ws := sb.NewWorkerSet()
//	ws.RecordSeen(42)
//	ws.RecordSeen(1337)
//	if err := sb.BuildIDMap(ctx); err != nil {
//	    return err
//	}
//
//	// Phase two: adjacency is keyed by mapped id, properties by original id.
//	idMap, _ := sb.IDMap()
//	app, _ := sb.NewAppender()
//	src, _ := idMap.ToMapped(42)
//	dst, _ := idMap.ToMapped(1337)
//	app.Append(src, []uint64{dst})
//
//	sb.LongProperties("age", -1).Set(42, 39)
//
//	store, err := sb.Build(ctx)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
// # Reading
//
// A built Store is immutable and safe for concurrent reads:
//
//	deg := store.Degree(src)
//	targets := store.Targets(src)
//
//	cur := store.NewCursor() // one per goroutine
//	cur.Init(src)
//	for cur.Remaining() > 0 {
//	    _ = cur.Next()
//	}
//
// # Memory
//
// Every page allocation of an import flows through one resource controller.
// WithMemoryLimit turns the controller into a hard budget, WithAllocThrottle
// caps the allocation rate, and WithOffHeapAdjacency moves adjacency pages
// into anonymous mappings that Close returns to the OS:
//
//	sb := hugego.NewStoreBuilder(
//	    hugego.WithMemoryLimit(32 << 30),
//	    hugego.WithOffHeapAdjacency(),
//	    hugego.WithAdjacencyCompression(adjacency.CompressionZSTD),
//	)
//
// # Key Features
//
//   - Paged sparse and dense arrays with lock-free concurrent builders
//   - Delta-varint adjacency lists with optional LZ4/ZSTD block compression
//   - Bump-pointer page arena, on-heap or mmap-backed
//   - Two-phase id mapping with optional cross-worker deduplication
//   - One memory budget and allocation throttle for the whole import
package hugego
