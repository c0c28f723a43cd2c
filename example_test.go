package threadify_test

import (
	"fmt"
	"time"

	threadify "github.com/dwsmith/go-threadify"
)

// ExampleNew demonstrates a self-terminating counter task.
func ExampleNew() {
	task := func(s *threadify.Storage) (bool, error) {
		n, _ := s.GetInt("count")
		n++
		s.Set("count", n)
		fmt.Println("cycle", n)
		return n < 3, nil // self-terminate after 3 cycles
	}

	runner, err := threadify.New(task, map[string]any{"count": 0})
	if err != nil {
		panic(err)
	}
	if err := runner.Start(); err != nil {
		panic(err)
	}

	runner.Join(0)
	fmt.Println("alive:", runner.IsAlive())

	// Output:
	// cycle 1
	// cycle 2
	// cycle 3
	// alive: false
}

// ExampleRunner_Pause demonstrates pausing and resuming a runner.
func ExampleRunner_Pause() {
	done := make(chan struct{})
	task := func(s *threadify.Storage) (bool, error) {
		n, _ := s.GetInt("count")
		n++
		s.Set("count", n)
		if n >= 5 {
			close(done)
			return false, nil
		}
		return true, nil
	}

	runner, err := threadify.New(task, map[string]any{"count": 0})
	if err != nil {
		panic(err)
	}

	// A pause requested before Start parks the loop ahead of its first
	// invocation, so the acknowledgment below is deterministic.
	runner.Pause(false)
	if err := runner.Start(); err != nil {
		panic(err)
	}
	runner.Pause(true)
	fmt.Println("paused:", runner.IsPaused())
	runner.Unpause()

	<-done
	runner.Join(0)
	count, _ := runner.Storage().GetInt("count")
	fmt.Println("count:", count)

	// Output:
	// paused: true
	// count: 5
}

// ExampleRunner_Kill demonstrates external termination of an endless task.
func ExampleRunner_Kill() {
	task := func(s *threadify.Storage) (bool, error) {
		time.Sleep(time.Millisecond)
		return true, nil // run forever
	}

	runner, err := threadify.New(task, nil, threadify.WithAutoStart(true))
	if err != nil {
		panic(err)
	}

	runner.Kill(true)
	fmt.Println("alive:", runner.IsAlive())

	// Output:
	// alive: false
}

// ExampleWithSharedStorage demonstrates message passing through a shared
// channel stored in the runner's storage context.
func ExampleWithSharedStorage() {
	queue := make(chan string, 4)
	task := func(s *threadify.Storage) (bool, error) {
		v, _ := s.Get("queue")
		msg := <-v.(chan string)
		if msg == "QUIT" {
			return false, nil
		}
		fmt.Println("received:", msg)
		return true, nil
	}

	// A channel cannot be deep-copied, so sharing must be explicit.
	runner, err := threadify.New(task, map[string]any{"queue": queue},
		threadify.WithSharedStorage(), threadify.WithAutoStart(true))
	if err != nil {
		panic(err)
	}

	queue <- "HELLO"
	queue <- "WORLD"
	queue <- "QUIT"
	runner.Join(0)

	// Output:
	// received: HELLO
	// received: WORLD
}
