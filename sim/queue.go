// Implements the ReadyQueue, the FIFO used by Round Robin and the multilevel
// policies. Processes are enqueued on arrival and re-enqueued after preemption.

package sim

import (
	"fmt"
	"strings"
)

// ReadyQueue represents a FIFO queue of processes waiting for the CPU.
type ReadyQueue struct {
	queue []*procState
}

// Enqueue adds a process to the back of the queue.
func (rq *ReadyQueue) Enqueue(s *procState) {
	if s == nil {
		panic("Enqueue: process must not be nil")
	}
	rq.queue = append(rq.queue, s)
}

func (rq *ReadyQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, s := range rq.queue {
		sb.WriteString(fmt.Sprintf("P%d", s.pid()))
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of processes in the queue.
func (rq *ReadyQueue) Len() int {
	return len(rq.queue)
}

// Peek returns the process at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (rq *ReadyQueue) Peek() *procState {
	if len(rq.queue) == 0 {
		return nil
	}
	return rq.queue[0]
}

// Dequeue removes and returns the process at the front of the queue.
// Returns nil if the queue is empty.
func (rq *ReadyQueue) Dequeue() *procState {
	if len(rq.queue) == 0 {
		return nil
	}
	s := rq.queue[0]
	rq.queue = rq.queue[1:]
	return s
}
