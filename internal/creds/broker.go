// Package creds implements the interactive credential broker: a
// synchronous-looking request/response protocol over asynchronous channels,
// used when stored credentials are absent, expired, or rejected.
package creds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message type tags on the broker channel.
const (
	TypeRequest  = "credential-request"
	TypeResponse = "credential-response"
)

// ErrRequestPending is returned when a credential request is attempted while
// another is already outstanding. Exactly one request may be in flight.
var ErrRequestPending = fmt.Errorf("a credential request is already pending")

// ErrTimeout is returned when no matching response arrives before the
// configured wait elapses. Terminal for the extraction attempt that asked.
var ErrTimeout = fmt.Errorf("credential request timed out")

// Request is an in-flight request for human-supplied credentials.
type Request struct {
	Type      string    `json:"type"`
	RequestID string    `json:"requestId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Response carries credentials supplied by the admin-facing collaborator.
// Responses for unknown or expired request ids are ignored.
type Response struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Broker correlates credential requests with responses by request id and
// enforces the single-pending-request invariant.
type Broker struct {
	mu        sync.Mutex
	pendingID string
	waiter    chan Response

	requests chan Request
}

// NewBroker creates a broker. The outbound request channel is buffered so a
// request never blocks on a slow consumer.
func NewBroker() *Broker {
	return &Broker{
		requests: make(chan Request, 1),
	}
}

// Requests is the outbound channel consumed by the admin-facing collaborator.
func (b *Broker) Requests() <-chan Request {
	return b.requests
}

// Respond delivers a response. Responses whose request id does not match the
// currently pending request are dropped silently.
func (b *Broker) Respond(resp Response) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pendingID == "" || resp.RequestID != b.pendingID || b.waiter == nil {
		return
	}
	select {
	case b.waiter <- resp:
	default:
		// Waiter already gone (timed out between the id check and the send).
	}
}

// Request emits a credential request and blocks until a correlated response
// arrives, the timeout elapses, or ctx is cancelled. Exactly one request may
// be pending at a time; a second concurrent call fails with ErrRequestPending.
func (b *Broker) Request(ctx context.Context, message string, timeout time.Duration) (Response, error) {
	b.mu.Lock()
	if b.pendingID != "" {
		b.mu.Unlock()
		return Response{}, ErrRequestPending
	}
	req := Request{
		Type:      TypeRequest,
		RequestID: uuid.NewString(),
		Message:   message,
		CreatedAt: time.Now(),
	}
	waiter := make(chan Response, 1)
	b.pendingID = req.RequestID
	b.waiter = waiter
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.pendingID = ""
		b.waiter = nil
		b.mu.Unlock()
	}()

	select {
	case b.requests <- req:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-waiter:
		return resp, nil
	case <-timer.C:
		return Response{}, ErrTimeout
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
