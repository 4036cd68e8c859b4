/*
	Basic script that churns a store with overwrites and deletes, then merges
	it and reports how much space compaction reclaimed.
*/

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/0xRadioAc7iv/mini-bitcask/bitcask"
)

const (
	// Fixed universe
	totalKeys   = 100
	totalValues = 100

	// Per-cycle behavior
	keysPerCycleWrite  = 20
	keysPerCycleDelete = 10

	progressEvery = 500
)

func main() {
	path := flag.String("path", "./churn.log", "Log file to churn")
	cycles := flag.Int("cycles", 5000, "Number of write/delete cycles")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	start := time.Now()
	fmt.Println("Starting Bitcask churn-heavy load generator")

	db, err := bitcask.Open(*path)
	if err != nil {
		fmt.Println("open error:", err)
		return
	}
	defer db.Close()

	keys := makeKeys(totalKeys)
	values := makeValues(totalValues)

	if err := churn(db, rand.New(rand.NewSource(*seed)), *cycles, keys, values); err != nil {
		fmt.Println(err)
		return
	}

	before := db.Size()
	if err := db.Merge(); err != nil {
		fmt.Println("merge error:", err)
		return
	}

	fmt.Printf("Load finished in %v: %d live keys, %d -> %d bytes after merge\n",
		time.Since(start), db.Len(), before, db.Size())
}

func churn(db *bitcask.DB, rng *rand.Rand, cycles int, keys, values []string) error {
	for cycle := 1; cycle <= cycles; cycle++ {

		// ---- WRITE / OVERWRITE PHASE ----
		for i := 0; i < keysPerCycleWrite; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]

			if err := db.Set([]byte(key), []byte(val)); err != nil {
				return fmt.Errorf("SET error: %w", err)
			}
		}

		// ---- DELETE PHASE ----
		for i := 0; i < keysPerCycleDelete; i++ {
			key := keys[rng.Intn(len(keys))]

			if err := db.Delete([]byte(key)); err != nil {
				return fmt.Errorf("DELETE error: %w", err)
			}
		}

		// ---- REWRITE PHASE (forces overwrite garbage) ----
		for i := 0; i < keysPerCycleWrite/2; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]

			if err := db.Set([]byte(key), []byte(val)); err != nil {
				return fmt.Errorf("REWRITE error: %w", err)
			}
		}

		if cycle%progressEvery == 0 {
			fmt.Printf("completed %d cycles, log is %d bytes\n", cycle, db.Size())
		}
	}

	return nil
}

func makeKeys(n int) []string {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("key-%03d", i)
	}
	return keys
}

func makeValues(n int) []string {
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = fmt.Sprintf("value-%03d-xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", i)
	}
	return values
}
