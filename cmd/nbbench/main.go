// Package main provides nbbench, a contention benchmark CLI for
// table.Dictionary, set.Set, and queue.Queue.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/lockfree-go/nbcollections/internal/stress"
	"github.com/lockfree-go/nbcollections/queue"
	"github.com/lockfree-go/nbcollections/set"
	"github.com/lockfree-go/nbcollections/table"
)

// Profile describes one named contention scenario: how many goroutines
// hammer the structure, how large the key space is, how long to run, and
// the relative mix of Get/Put/Remove operations against the table. nbbench
// loads these from a hujson (commented-JSON) config file so profiles can
// carry inline commentary.
type Profile struct {
	Name       string  `json:"name"`
	Goroutines int     `json:"goroutines"`
	KeySpace   int     `json:"key_space"`  //nolint:tagliatelle // snake_case for config file
	Duration   string  `json:"duration"`
	GetWeight  float64 `json:"get_weight"` //nolint:tagliatelle // snake_case for config file
	PutWeight  float64 `json:"put_weight"` //nolint:tagliatelle // snake_case for config file
	DelWeight  float64 `json:"del_weight"` //nolint:tagliatelle // snake_case for config file
}

func defaultProfile() Profile {
	return Profile{
		Name:       "default",
		Goroutines: 8,
		KeySpace:   10_000,
		Duration:   "2s",
		GetWeight:  0.8,
		PutWeight:  0.15,
		DelWeight:  0.05,
	}
}

func main() {
	var (
		profilePath = flag.String("profile", "", "path to a hujson profile file (nonzero -g/-k/-d flags override its values)")
		goroutines  = flag.IntP("goroutines", "g", 0, "worker goroutine count (0 = profile default)")
		keySpace    = flag.IntP("keys", "k", 0, "distinct key count (0 = profile default)")
		duration    = flag.DurationP("duration", "d", 0, "run duration (0 = profile default)")
		structure   = flag.StringP("structure", "s", "table", "structure to benchmark: table, set, or queue")
	)

	flag.Parse()

	profile := defaultProfile()

	if *profilePath != "" {
		loaded, err := loadProfile(*profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "nbbench: %v\n", err)
			os.Exit(1)
		}

		profile = loaded
	}

	if *goroutines > 0 {
		profile.Goroutines = *goroutines
	}

	if *keySpace > 0 {
		profile.KeySpace = *keySpace
	}

	if *duration > 0 {
		profile.Duration = duration.String()
	}

	dur, err := time.ParseDuration(profile.Duration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nbbench: invalid duration %q: %v\n", profile.Duration, err)
		os.Exit(1)
	}

	fmt.Printf("profile %q: %d goroutines, %d keys, %s, structure=%s\n",
		profile.Name, profile.Goroutines, profile.KeySpace, dur, *structure)

	var ops int64

	switch *structure {
	case "table":
		ops = runTableBench(profile, dur)
	case "set":
		ops = runSetBench(profile, dur)
	case "queue":
		ops = runQueueBench(profile, dur)
	default:
		fmt.Fprintf(os.Stderr, "nbbench: unknown structure %q (want table, set, or queue)\n", *structure)
		os.Exit(1)
	}

	fmt.Printf("%d ops in %s (%.0f ops/sec)\n", ops, dur, float64(ops)/dur.Seconds())
}

func loadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}

	std, err := hujson.Standardize(raw)
	if err != nil {
		return Profile{}, fmt.Errorf("parsing hujson profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(std, &p); err != nil {
		return Profile{}, fmt.Errorf("decoding profile: %w", err)
	}

	return p, nil
}

func runTableBench(p Profile, dur time.Duration) int64 {
	d := table.New[int, int](p.KeySpace, nil)

	for i := range p.KeySpace / 2 {
		d.TryAdd(i, i)
	}

	var ops atomic.Int64

	deadline := time.Now().Add(dur)

	_ = stress.Fleet(p.Goroutines, func(worker int) error {
		rng := stress.Rand(uint64(time.Now().UnixNano()), worker)

		for time.Now().Before(deadline) {
			key := int(rng.Uint32()) % p.KeySpace
			if key < 0 {
				key = -key
			}

			switch pick := rng.Float64(); {
			case pick < p.GetWeight:
				d.Get(key)
			case pick < p.GetWeight+p.PutWeight:
				d.TryAdd(key, key)
			default:
				d.Remove(key)
			}

			ops.Add(1)
		}

		return nil
	})

	return ops.Load()
}

func runSetBench(p Profile, dur time.Duration) int64 {
	s := set.New[int](p.KeySpace, nil)

	var ops atomic.Int64

	deadline := time.Now().Add(dur)

	_ = stress.Fleet(p.Goroutines, func(worker int) error {
		rng := stress.Rand(uint64(time.Now().UnixNano()), worker)

		for time.Now().Before(deadline) {
			key := int(rng.Uint32()) % p.KeySpace
			if key < 0 {
				key = -key
			}

			if rng.Float64() < 0.5 {
				s.Add(key)
			} else {
				s.Remove(key)
			}

			ops.Add(1)
		}

		return nil
	})

	return ops.Load()
}

func runQueueBench(p Profile, dur time.Duration) int64 {
	q := queue.New[int]()

	var ops atomic.Int64

	deadline := time.Now().Add(dur)

	_ = stress.Fleet(p.Goroutines, func(worker int) error {
		for time.Now().Before(deadline) {
			if worker%2 == 0 {
				q.Enqueue(worker)
			} else {
				q.TryDequeue()
			}

			ops.Add(1)
		}

		return nil
	})

	return ops.Load()
}
