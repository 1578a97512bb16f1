// Package usecase defines the contract a use case exposes to the REPL:
// its documented plan, its request schema, an authorization gate and a
// runnable action.
package usecase

import (
	"context"
	"encoding/json"
)

// Identity is the caller-owned principal handed to Authorize. Its shape is
// defined by the use case implementation; the REPL never inspects it.
type Identity any

// UseCase is a discrete unit of business logic.
type UseCase interface {
	// Doc returns the execution plan. It is called on demand and never cached.
	Doc() Doc
	// RequestSchema returns the declared inputs in display order.
	RequestSchema() *Schema
	// Authorize reports whether identity may run the use case.
	Authorize(ctx context.Context, identity Identity) (bool, error)
	// Run executes the use case with the collected answers.
	Run(ctx context.Context, answers *Answers) (Result, error)
}

// Entry pairs a use case with its catalog tags (e.g. domain, resource).
type Entry struct {
	Tags    map[string]string
	UseCase UseCase
}

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

// Result is the outcome of one Run. OK discriminates success from an
// expected failure; Payload carries everything else verbatim.
type Result struct {
	OK      bool
	Payload map[string]any
}

// Ok builds a successful result.
func Ok(payload map[string]any) Result {
	return Result{OK: true, Payload: payload}
}

// Fail builds a failed result.
func Fail(payload map[string]any) Result {
	return Result{OK: false, Payload: payload}
}

// MarshalJSON flattens the payload next to the isOk flag.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Payload)+1)
	for k, v := range r.Payload {
		out[k] = v
	}
	out["isOk"] = r.OK
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ok, _ := raw["isOk"].(bool)
	delete(raw, "isOk")
	r.OK = ok
	r.Payload = raw
	return nil
}
