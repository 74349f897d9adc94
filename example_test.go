package futexsync_test

import (
	"fmt"
	"sort"

	"github.com/thetarby/futexsync"
	"golang.org/x/sync/errgroup"
)

// This example counts words from several goroutines into a map guarded by a
// Mutex.
func ExampleMutex() {
	counts := futexsync.NewMutex(map[string]int{})
	words := []string{"go", "futex", "go", "lock", "go"}

	var g errgroup.Group
	for _, w := range words {
		w := w
		g.Go(func() error {
			guard := counts.Lock()
			defer guard.Unlock()
			(*guard.Value())[w]++
			return nil
		})
	}
	_ = g.Wait()

	guard := counts.Lock()
	fmt.Println((*guard.Value())["go"])
	guard.Unlock()
	// Output: 3
}

// This example hands items from a producer to a consumer through a slice
// guarded by a Mutex, using a CondVar to sleep while the slice is empty.
func ExampleCondVar() {
	queue := futexsync.NewMutex([]int(nil))
	ready := futexsync.NewCondVar()

	go func() {
		for i := 1; i <= 3; i++ {
			queue.With(func(q *[]int) { *q = append(*q, i) })
			ready.NotifyOne()
		}
	}()

	sum := 0
	for n := 0; n < 3; n++ {
		guard := queue.Lock()
		for len(*guard.Value()) == 0 {
			ready.Wait(&guard)
		}
		q := *guard.Value()
		sum += q[0]
		*guard.Value() = q[1:]
		guard.Unlock()
	}
	fmt.Println(sum)
	// Output: 6
}

// This example shows the basic usage of SeLock to protect a slice shared
// between reader and writer goroutines.
func ExampleSeLock() {
	names := futexsync.NewSeLock([]string{"b"})

	names.Write(func(s *[]string) {
		*s = append(*s, "a", "c")
		sort.Strings(*s)
	})

	guard := names.Shared()
	fmt.Println(len(*guard.Value()), (*guard.Value())[0])
	guard.Unlock()
	// Output: 3 a
}
