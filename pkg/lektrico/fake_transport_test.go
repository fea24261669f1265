package lektrico

import (
	"context"
	"encoding/json"
	"sync"
)

type fakeCall struct {
	method string
	path   string
	body   any
}

// fakeTransport answers from a map of path to result and records calls.
type fakeTransport struct {
	mu      sync.Mutex
	results map[string]json.RawMessage
	errs    map[string]error
	calls   []fakeCall
	closed  int
}

func (f *fakeTransport) Invoke(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{method: method, path: path, body: body})
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	if res, ok := f.results[path]; ok {
		return res, nil
	}
	return nil, &ConnectionError{Reason: "unexpected status", StatusCode: 404}
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}
