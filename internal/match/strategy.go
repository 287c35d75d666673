// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package match

import (
	"strings"

	"github.com/pkg/errors"

	"cryptolots/internal/ledger"
)

// Strategy decides which end of a waiting queue is its top.
type Strategy uint8

const (
	FIFO Strategy = iota + 1 // top is the oldest waiting execution
	LIFO                     // top is the newest waiting execution
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	}
	return "unknown"
}

func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	}
	return 0, errors.Errorf("unsupported strategy: %q", value)
}

// queue holds one asset's executions in arrival order. Executions always arrive at the
// tail; peek, take and add work on whichever end the strategy calls the top.
type queue struct {
	strategy Strategy
	items    []*ledger.Execution
}

func newQueue(s Strategy) *queue {
	return &queue{strategy: s}
}

func (q *queue) empty() bool {
	return len(q.items) == 0
}

func (q *queue) push(e *ledger.Execution) {
	q.items = append(q.items, e)
}

func (q *queue) peek() *ledger.Execution {
	if q.strategy == LIFO {
		return q.items[len(q.items)-1]
	}
	return q.items[0]
}

func (q *queue) take() *ledger.Execution {
	var e *ledger.Execution
	if q.strategy == LIFO {
		e = q.items[len(q.items)-1]
		q.items[len(q.items)-1] = nil
		q.items = q.items[:len(q.items)-1]
		return e
	}
	e = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return e
}

func (q *queue) add(e *ledger.Execution) {
	if q.strategy == LIFO {
		q.items = append(q.items, e)
		return
	}
	q.items = append([]*ledger.Execution{e}, q.items...)
}

// drain hands the remaining executions over in arrival order.
func (q *queue) drain() []*ledger.Execution {
	items := q.items
	q.items = nil
	return items
}
