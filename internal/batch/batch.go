// Package batch implements the JSON test-case runner: it reads the
// {"testcases": {...}} document, fans each case out to
// internal/dispatch concurrently, and reassembles a
// {"responses": {...}} document keyed the same way, independent of
// completion order.
package batch

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/kauma-lab/kauma/internal/dispatch"
)

// Input is the top-level shape of a batch's JSON document.
type Input struct {
	Testcases map[string]Testcase `json:"testcases"`
}

// Testcase is one dispatcher call: the action name and its arguments,
// kept as raw JSON until internal/dispatch decodes them.
type Testcase struct {
	Action    string          `json:"action"`
	Arguments json.RawMessage `json:"arguments"`
}

// Output is the top-level shape of a batch's result document.
type Output struct {
	Responses map[string]interface{} `json:"responses"`
}

// maxConcurrency bounds how many test cases run at once; the core
// itself holds no shared mutable state, so this exists only to cap
// memory/CPU pressure on large batches, not for correctness.
const maxConcurrency = 16

// Run dispatches each test case concurrently via
// golang.org/x/sync/errgroup and returns the reassembled responses. A
// per-case dispatch error is recorded as {"error": "..."} in that
// case's response rather than aborting the batch; a malformed
// top-level document is the caller's concern (it never reaches Run),
// not Run's.
func Run(ctx context.Context, in Input) (Output, error) {
	type result struct {
		id  string
		val interface{}
	}

	ids := make([]string, 0, len(in.Testcases))
	for id := range in.Testcases {
		ids = append(ids, id)
	}

	results := make([]result, len(ids))
	g, _ := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxConcurrency)

	for i := range ids {
		i, id := i, ids[i]
		tc := in.Testcases[id]
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := dispatch.Handle(tc.Action, tc.Arguments)
			if err != nil {
				results[i] = result{id: id, val: map[string]interface{}{"error": err.Error()}}
				return nil
			}
			results[i] = result{id: id, val: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, err
	}

	responses := make(map[string]interface{}, len(results))
	for _, r := range results {
		responses[r.id] = r.val
	}
	return Output{Responses: responses}, nil
}
