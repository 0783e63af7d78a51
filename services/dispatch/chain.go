package dispatch

import (
	"context"
	"errors"
)

// ErrEmptyChain is returned when a chain has no models
var ErrEmptyChain = errors.New("chain requires at least one model")

// Step records one model in a chain
type Step struct {
	Index    int    `json:"index"`
	Selector string `json:"selector"`
	Input    string `json:"input"`
	Result   Result `json:"result"`
}

// ChainResult is the outcome of a chained invocation
type ChainResult struct {
	// Steps holds every attempted step, ending at the first failure
	Steps []Step `json:"steps"`

	// Result is the last success, or the first failure
	Result Result `json:"result"`
}

// Halted reports whether the chain stopped on a failure
func (c ChainResult) Halted() bool {
	return !c.Result.OK()
}

// Chain invokes each selector in order, feeding every successful output into
// the next call. The first failure ends the chain; later models are not called.
func Chain(ctx context.Context, invoker Invoker, prompt string, selectors []string) (ChainResult, error) {
	if len(selectors) == 0 {
		return ChainResult{}, ErrEmptyChain
	}

	out := ChainResult{Steps: make([]Step, 0, len(selectors))}
	input := prompt

	for i, selector := range selectors {
		result := invoker.Invoke(ctx, input, selector)
		out.Steps = append(out.Steps, Step{Index: i + 1, Selector: selector, Input: input, Result: result})
		out.Result = result

		if !result.OK() {
			break
		}
		input = result.Text
	}

	return out, nil
}
