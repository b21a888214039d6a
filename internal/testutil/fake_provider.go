package testutil

import (
	"context"
	"sync"

	"github.com/shineum/sendmail/internal/email"
)

// FakeProvider captures messages in memory for tests.
type FakeProvider struct {
	mu   sync.Mutex
	Sent []*email.Email
	Err  error
}

func (f *FakeProvider) Send(_ context.Context, msg *email.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, msg)
	return f.Err
}

func (f *FakeProvider) Name() string {
	return "fake"
}

// Calls returns how many times Send was invoked.
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}
