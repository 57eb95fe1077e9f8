package ocrengine

import "context"

// FixedEngine is a deterministic test double that always returns the same
// pre-built Result, regardless of input image. Useful for CLI smoke runs
// and tests that don't want a real OCR binary in the loop.
type FixedEngine struct {
	Result Result
	Err    error
}

func (f *FixedEngine) Analyze(ctx context.Context, _ []byte) (Result, error) {
	if f.Err != nil {
		return Result{}, f.Err
	}
	return f.Result, nil
}
