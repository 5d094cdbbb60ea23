package rpc

import (
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/superisaac/jsoff"
	"github.com/superisaac/rpcmq/codec"
	"time"
)

func NewPeer(transport Transport, cfg *Config) *Peer {
	if cfg == nil {
		cfg = &Config{}
	}
	config := *cfg
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Peer{
		transport: transport,
		config:    config,
		reqs:      newRegistry(),
		now:       time.Now,
	}
}

func (self *Peer) Config() Config {
	return self.config
}

func (self *Peer) Name() string {
	return self.config.Name
}

func (self *Peer) Log() *log.Entry {
	return log.WithFields(log.Fields{
		"peer": self.config.Name,
	})
}

// OnRequest registers the application handler for inbound calls.
func (self *Peer) OnRequest(handler RequestHandler) {
	self.handlerLock.Lock()
	defer self.handlerLock.Unlock()
	self.requestHandler = handler
}

// OnRequestError registers the observer of unusable inbound call frames.
func (self *Peer) OnRequestError(handler RequestErrorHandler) {
	self.handlerLock.Lock()
	defer self.handlerLock.Unlock()
	self.requestErrorHandler = handler
}

// registry access
func (self *Peer) AddRequest(req *Request) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if !self.reqs.insert(req) {
		return ErrDuplicateID
	}
	return nil
}

func (self *Peer) GetRequest(id string) (*Request, bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.reqs.lookup(id)
}

// DelRequest drops a pending request without resolving it; its callback is
// never invoked.
func (self *Peer) DelRequest(id string) (*Request, bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.reqs.remove(id)
}

func (self *Peer) Pending() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.reqs.len()
}

// PendingIDs lists live correlation ids oldest first.
func (self *Peer) PendingIDs() []string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.reqs.ids()
}

// caller path

// NewRequest builds a request with a fresh correlation id and the per-call
// options merged over the peer defaults. It is not registered yet.
func (self *Peer) NewRequest(key string, payload interface{}, cb Callback, opts ...CallOption) *Request {
	options := CallOptions{Timeout: self.config.Timeout}
	for _, opt := range opts {
		opt(&options)
	}
	return &Request{
		ID:        jsoff.NewUuid(),
		Key:       key,
		Payload:   payload,
		Options:   options,
		CreatedAt: self.now(),
		callback:  cb,
	}
}

// IssueCall creates and registers a request. Every failure, including an
// empty key, reaches cb rather than the caller, on its own goroutine after
// IssueCall returns.
func (self *Peer) IssueCall(key string, payload interface{}, cb Callback, opts ...CallOption) *Request {
	req := self.NewRequest(key, payload, cb, opts...)
	if err := self.AddRequest(req); err != nil {
		req.Log().Warnf("add request: %s", err)
		go req.resolve(ErrInternal, nil)
		return req
	}
	callsIssued.Inc()
	if key == "" {
		req.Log().Warnf("empty call key")
		go self.dispatchReply(req.ID, string(ErrBadKey))
	}
	return req
}

// Call issues a request and sends its call frame to destination. A send
// failure resolves the request with ERR_SEND after Call returns.
func (self *Peer) Call(ctx context.Context, destination string, key string, payload interface{}, cb Callback, opts ...CallOption) *Request {
	req := self.IssueCall(key, payload, cb, opts...)
	if found, ok := self.GetRequest(req.ID); !ok || found != req || req.Key == "" {
		// resolved or being resolved by IssueCall
		return req
	}
	if self.transport == nil {
		req.Log().Warnf("send call: %s", ErrNoTransport)
		go self.dispatchReply(req.ID, string(ErrSend))
		return req
	}
	frame := codec.EncodeCall(req.ID, req.Key, req.Payload)
	if err := self.transport.SendCall(ctx, destination, frame); err != nil {
		req.Log().Warnf("send call to %s: %s", destination, err)
		go self.dispatchReply(req.ID, string(ErrSend))
	}
	return req
}

type callResult struct {
	result interface{}
	err    error
}

// CallWait performs Call and blocks until the request resolves or ctx is
// done. A request abandoned through ctx still resolves later by timeout.
func (self *Peer) CallWait(ctx context.Context, destination string, key string, payload interface{}, opts ...CallOption) (interface{}, error) {
	resultChannel := make(chan callResult, 1)
	self.Call(ctx, destination, key, payload, func(err error, result interface{}) {
		resultChannel <- callResult{result: result, err: err}
	}, opts...)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChannel:
		return res.result, res.err
	}
}

// reply dispatcher

// HandleReply resolves the pending request id with an inbound reply.
// Unknown or already resolved ids are dropped. A string starting with ERR_
// is delivered as the error with no result. It reports whether a request
// was resolved.
func (self *Peer) HandleReply(id string, data interface{}) bool {
	if !self.dispatchReply(id, data) {
		repliesDropped.Inc()
		self.Log().Debugf("drop reply for unknown request %s", id)
		return false
	}
	repliesMatched.Inc()
	return true
}

// dispatchReply removes the request under the lock and runs its callback
// after unlocking.
func (self *Peer) dispatchReply(id string, data interface{}) bool {
	self.mu.Lock()
	req, ok := self.reqs.remove(id)
	self.mu.Unlock()
	if !ok {
		return false
	}

	var err error
	if IsSentinel(data) {
		err = SentinelError(data.(string))
		data = nil
	}
	req.resolve(err, data)
	return true
}

// HandleReplyFrame decodes a raw reply payload and dispatches it.
func (self *Peer) HandleReplyFrame(id string, raw string) bool {
	return self.HandleReply(id, codec.Decode(raw))
}

// callee path

// HandleRequest surfaces a decoded call frame to the request handler. A nil
// or malformed frame raises the request error signal instead.
func (self *Peer) HandleRequest(origin string, data interface{}) {
	if data == nil {
		self.requestError(origin, ErrNilFrame)
		return
	}
	frame := codec.CallFrameOf(data)
	if frame == nil {
		self.requestError(origin, ErrMalformedFrame)
		return
	}

	req := &InboundRequest{
		ID:      frame.ID,
		Key:     frame.Key,
		Payload: frame.Payload,
		Origin:  origin,
		peer:    self,
	}

	self.handlerLock.RLock()
	handler := self.requestHandler
	self.handlerLock.RUnlock()

	if handler == nil {
		req.Log().Warnf("no request handler, call dropped")
		return
	}
	handler(req)
}

// HandleRequestFrame decodes a raw call frame and dispatches it.
func (self *Peer) HandleRequestFrame(origin string, raw string) {
	self.HandleRequest(origin, codec.Decode(raw))
}

func (self *Peer) requestError(origin string, err error) {
	requestErrors.Inc()

	self.handlerLock.RLock()
	handler := self.requestErrorHandler
	self.handlerLock.RUnlock()

	if handler == nil {
		self.Log().Warnf("request error from %s: %s", origin, err)
		return
	}
	handler(origin, err)
}

func (self *Peer) sendReply(ctx context.Context, destination string, id string, frame string) error {
	if self.transport == nil {
		return ErrNoTransport
	}
	if err := self.transport.SendReply(ctx, destination, id, frame); err != nil {
		return errors.Wrap(err, "transport.SendReply")
	}
	return nil
}
