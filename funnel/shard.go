package funnel

import (
	"hash/fnv"
	"runtime"
	"sync"

	"funnelscope/api/models"
)

// shardCount is the number of user partitions used by per-user reductions.
// Tests lower or raise it to exercise the merge path.
var shardCount = runtime.GOMAXPROCS(0)

// partitionByUser splits event positions into shards so that all events
// of a user land in the same shard. Positions keep their relative order.
func partitionByUser(events []models.NormalizedEvent, shards int) [][]int {
	if shards < 1 {
		shards = 1
	}
	parts := make([][]int, shards)
	if shards == 1 {
		all := make([]int, len(events))
		for i := range events {
			all[i] = i
		}
		parts[0] = all
		return parts
	}

	for i, ev := range events {
		h := fnv.New32a()
		h.Write([]byte(ev.UserID))
		s := int(h.Sum32() % uint32(shards))
		parts[s] = append(parts[s], i)
	}
	return parts
}

// reduceShards runs reduce over every partition concurrently and returns
// the partial results in partition order once all of them are done.
func reduceShards[T any](parts [][]int, reduce func(positions []int) T) []T {
	partials := make([]T, len(parts))
	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(i int, part []int) {
			defer wg.Done()
			partials[i] = reduce(part)
		}(i, part)
	}
	wg.Wait()
	return partials
}
