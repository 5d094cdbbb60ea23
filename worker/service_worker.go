package worker

import (
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/superisaac/rpcmq/rpc"
	"sort"
	"time"
)

// WithTimeout bounds the context handed to the handler.
func WithTimeout(timeout time.Duration) WorkerHandlerSetter {
	return func(h *WorkerHandler) {
		h.timeout = timeout
	}
}

func (self *WorkerRequest) Context() context.Context {
	return self.ctx
}

func (self *WorkerRequest) Log() *log.Entry {
	return self.Msg.Log()
}

// NewServiceWorker serves the inbound calls of peer by call key. Handler
// contexts derive from connCtx and are cancelled with it.
func NewServiceWorker(connCtx context.Context, peer *rpc.Peer) *ServiceWorker {
	worker := &ServiceWorker{
		connCtx:        connCtx,
		peer:           peer,
		workerHandlers: make(map[string]*WorkerHandler),
	}
	peer.OnRequest(worker.dispatch)
	peer.OnRequestError(func(origin string, err error) {
		peer.Log().Warnf("bad call frame from %s: %s", origin, err)
	})
	worker.On("_ping", func(req *WorkerRequest, payload interface{}) (interface{}, error) {
		return "pong", nil
	})
	return worker
}

func (self *ServiceWorker) Peer() *rpc.Peer {
	return self.peer
}

func (self *ServiceWorker) On(key string, callback WorkerCallback, setters ...WorkerHandlerSetter) error {
	if key == "" {
		return errors.New("empty call key")
	}
	self.handlerLock.Lock()
	defer self.handlerLock.Unlock()
	if _, ok := self.workerHandlers[key]; ok {
		return errors.New("callback already exist")
	}
	h := &WorkerHandler{callback: callback}
	for _, setter := range setters {
		setter(h)
	}
	self.workerHandlers[key] = h
	return nil
}

// Keys lists the registered call keys.
func (self *ServiceWorker) Keys() []string {
	self.handlerLock.RLock()
	defer self.handlerLock.RUnlock()
	keys := []string{}
	for key := range self.workerHandlers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (self *ServiceWorker) getHandler(key string) (*WorkerHandler, bool) {
	self.handlerLock.RLock()
	defer self.handlerLock.RUnlock()
	h, ok := self.workerHandlers[key]
	return h, ok
}

// dispatch runs each call on its own goroutine so a slow handler does not
// hold up the transport.
func (self *ServiceWorker) dispatch(msg *rpc.InboundRequest) {
	self.running.Add(1)
	go func() {
		defer self.running.Done()
		self.feed(self.connCtx, msg)
	}()
}

// Wait blocks until every dispatched call has been answered.
func (self *ServiceWorker) Wait() {
	self.running.Wait()
}

func (self *ServiceWorker) feed(rootCtx context.Context, msg *rpc.InboundRequest) {
	h, ok := self.getHandler(msg.Key)
	if !ok {
		msg.Log().Warnf("call key not found")
		if err := msg.Reply(rootCtx, string(rpc.ErrMethodNotFound)); err != nil {
			msg.Log().Errorf("reply error %s", err)
		}
		return
	}

	var ctx context.Context
	var cancel func()
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(rootCtx, h.timeout)
	} else {
		ctx, cancel = context.WithCancel(rootCtx)
	}
	defer cancel()

	req := &WorkerRequest{Msg: msg, ctx: ctx}
	res, err := self.call(h, req)
	if err := msg.Reply(rootCtx, self.wrapResult(res, err, msg)); err != nil {
		msg.Log().Errorf("reply error %s", err)
	}
}

func (self *ServiceWorker) call(h *WorkerHandler, req *WorkerRequest) (res interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			req.Log().Errorf("handler panic: %v", r)
			res, err = nil, rpc.ErrInternal
		}
	}()
	return h.callback(req, req.Msg.Payload)
}

func (self *ServiceWorker) wrapResult(res interface{}, err error, msg *rpc.InboundRequest) interface{} {
	if err != nil {
		var sentinel rpc.SentinelError
		if errors.As(err, &sentinel) {
			return string(sentinel)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return string(rpc.ErrTimeout)
		}
		msg.Log().Warnf("handler error %s", err)
		return string(rpc.ErrInternal)
	}
	return res
}
