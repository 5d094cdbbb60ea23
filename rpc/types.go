package rpc

import (
	"context"
	"sync"
	"time"
)

const DefaultTimeout = 10000 * time.Millisecond

// Transport is the host message transport a Peer rides on. Implementations
// deliver inbound frames back to the peer through HandleRequestFrame and
// HandleReplyFrame.
type Transport interface {
	// send an encoded call frame to destination
	SendCall(ctx context.Context, destination string, frame string) error

	// send an encoded reply payload tagged with its correlation id
	SendReply(ctx context.Context, destination string, id string, frame string) error
}

// Callback receives the outcome of a call exactly once.
type Callback func(err error, result interface{})

type Config struct {
	// Name is the return address peers reply to
	Name string

	// Timeout is the default call deadline and the monitor sweep period
	Timeout time.Duration
}

type CallOptions struct {
	Timeout time.Duration
	Meta    map[string]interface{}
}

type CallOption func(opts *CallOptions)

// Request is one outstanding call owned by the pending registry.
type Request struct {
	ID        string
	Key       string
	Payload   interface{}
	Options   CallOptions
	CreatedAt time.Time

	callback Callback
}

type RequestHandler func(req *InboundRequest)

type RequestErrorHandler func(origin string, err error)

// InboundRequest is a call received from a remote peer together with the
// capability to answer it.
type InboundRequest struct {
	ID      string
	Key     string
	Payload interface{}
	Origin  string

	peer      *Peer
	replyOnce sync.Once
}

type Peer struct {
	transport Transport
	config    Config

	mu   sync.Mutex
	reqs *registry

	handlerLock         sync.RWMutex
	requestHandler      RequestHandler
	requestErrorHandler RequestErrorHandler

	lifecycleLock sync.Mutex
	cancelFunc    func()
	done          chan struct{}

	now func() time.Time
}
