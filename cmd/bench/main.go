// Bench is a benchmarking tool for measuring boomap build performance,
// lookup throughput, and memory usage.
//
// Usage:
//
//	go run ./cmd/bench -keys 10000000 -workers 8 -hasher xxh3
//
// Flags:
//
//	-keys      Number of keys to index (default: 10,000,000)
//	-workers   Oracle construction workers (default: 1)
//	-gamma     Bits per remaining key at each oracle level (default: 2)
//	-hasher    Key hasher: xxh3, xxhash, murmur3 or comparable (default: xxh3)
//	-v         Log build progress to stderr
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tamirms/boomap"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

func hasherByName(name string) (boomap.Hasher[string], bool) {
	switch name {
	case "xxh3":
		return boomap.XXH3(), true
	case "xxhash":
		return boomap.XXHash(), true
	case "murmur3":
		return boomap.Murmur3(), true
	case "comparable":
		return boomap.Comparable[string](), true
	}
	return nil, false
}

func main() {
	keysFlag := flag.Int("keys", 10_000_000, "number of keys")
	workersFlag := flag.Int("workers", 1, "number of oracle construction workers")
	gammaFlag := flag.Float64("gamma", 2, "bits per remaining key at each oracle level")
	hasherFlag := flag.String("hasher", "xxh3", "hasher: xxh3, xxhash, murmur3 or comparable")
	verbose := flag.Bool("v", false, "log build progress to stderr")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	memprofile := flag.String("memprofile", "", "write memory profile to file (build phase only)")
	flag.Parse()

	numKeys := *keysFlag
	if numKeys <= 0 {
		fmt.Println("-keys must be positive")
		return
	}
	hasher, ok := hasherByName(*hasherFlag)
	if !ok {
		fmt.Printf("Unknown hasher: %s (use xxh3, xxhash, murmur3 or comparable)\n", *hasherFlag)
		return
	}

	opts := []boomap.Option{boomap.WithGamma(*gammaFlag)}
	if *verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, boomap.WithLogger(logger))
	}

	fmt.Println("Generating keys...")
	keys := make([]string, numKeys)
	var buf [16]byte
	for i := range keys {
		_, _ = rand.Read(buf[:]) // crypto/rand.Read error is fatal system issue; ignore for benchmark
		keys[i] = hex.EncodeToString(buf[:])
	}

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()

	// 10ms sampling for peak memory (both heap and RSS).
	// Uses runtime/metrics instead of ReadMemStats to avoid stop-the-world pauses.
	var peakAlloc atomic.Uint64
	var peakRSS atomic.Uint64
	peakAlloc.Store(baseline.Alloc)
	peakRSS.Store(baselineRSS)
	done := make(chan struct{})
	go func() {
		samples := []metrics.Sample{
			{Name: "/memory/classes/heap/objects:bytes"},
		}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				heapBytes := samples[0].Value.Uint64()
				for {
					old := peakAlloc.Load()
					if heapBytes <= old || peakAlloc.CompareAndSwap(old, heapBytes) {
						break
					}
				}
				rss := getMaxRSS()
				for {
					old := peakRSS.Load()
					if rss <= old || peakRSS.CompareAndSwap(old, rss) {
						break
					}
				}
			}
		}
	}()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	fmt.Println("Building map...")
	buildStart := time.Now()

	m := boomap.New[string, uint64](hasher, opts...)
	m.Grow(numKeys)
	for i, k := range keys {
		if err := m.Add(k, uint64(i)); err != nil {
			fmt.Printf("Add failed: %v\n", err)
			return
		}
	}
	addDuration := time.Since(buildStart)
	err := m.Build(*workersFlag)

	buildDuration := time.Since(buildStart)

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Printf("could not create memory profile: %v\n", err)
		} else {
			runtime.GC() // Get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Printf("could not write memory profile: %v\n", err)
			}
			_ = f.Close()
		}
	}

	close(done)

	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	if final.Alloc > peakAlloc.Load() {
		peakAlloc.Store(final.Alloc)
	}
	finalRSS := getMaxRSS()
	if finalRSS > peakRSS.Load() {
		peakRSS.Store(finalRSS)
	}

	peakHeapMem := peakAlloc.Load() - baseline.Alloc
	peakRSSMem := peakRSS.Load() - baselineRSS

	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		return
	}
	stats := m.Stats()

	queryOrder := mrand.Perm(numKeys)

	fmt.Println("Warming up queries...")
	for i := 0; i < 10000; i++ {
		_, _ = m.Find(keys[queryOrder[i%numKeys]]) // Benchmark: measuring throughput, not correctness
	}

	fmt.Println("Benchmarking queries...")
	numQueries := 1_000_000
	misses := 0
	queryStart := time.Now()
	for i := 0; i < numQueries; i++ {
		if _, err := m.Find(keys[queryOrder[i%numKeys]]); err != nil {
			misses++
		}
	}
	queryDuration := time.Since(queryStart)
	avgLatency := float64(queryDuration.Nanoseconds()) / float64(numQueries)

	absent := make([]string, 10000)
	for i := range absent {
		_, _ = rand.Read(buf[:])
		absent[i] = "absent-" + hex.EncodeToString(buf[:])
	}
	falseHits := 0
	missStart := time.Now()
	for i := 0; i < numQueries; i++ {
		if _, err := m.Find(absent[i%len(absent)]); err == nil {
			falseHits++
		}
	}
	missLatency := float64(time.Since(missStart).Nanoseconds()) / float64(numQueries)

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╦══════════════════╗\n")
	fmt.Printf("║ Hasher: %-12s║ Workers: %-5d ║                  ║\n", *hasherFlag, *workersFlag)
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Metric              ║ Value          ║ Target           ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Oracle bits per key ║ %6.3f bits/key║ -                ║\n", stats.BitsPerKey)
	fmt.Printf("║ Oracle levels       ║ %6d         ║ -                ║\n", stats.Levels)
	fmt.Printf("║ Fallback keys       ║ %6d         ║ -                ║\n", stats.FallbackKeys)
	fmt.Printf("║ Hit latency         ║ %6.1f ns      ║ -                ║\n", avgLatency)
	fmt.Printf("║ Miss latency        ║ %6.1f ns      ║ -                ║\n", missLatency)
	fmt.Printf("║ Lookup errors       ║ %6d         ║ 0                ║\n", misses)
	fmt.Printf("║ False hits          ║ %6d         ║ 0                ║\n", falseHits)
	fmt.Printf("║ Add time            ║ %6.2f sec     ║ -                ║\n", addDuration.Seconds())
	fmt.Printf("║ Build time          ║ %6.2f sec     ║ -                ║\n", buildDuration.Seconds())
	fmt.Printf("║ Build throughput    ║ %6.2f M/sec   ║ -                ║\n", float64(numKeys)/buildDuration.Seconds()/1_000_000)
	fmt.Printf("║ Peak heap memory    ║ %6.1f MB      ║ -                ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %6.1f MB      ║ -                ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════╩══════════════════╝\n")
}
