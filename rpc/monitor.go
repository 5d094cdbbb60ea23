package rpc

import (
	"context"
	"time"
)

// Start runs the timeout monitor until Stop is called or ctx is done. The
// sweep period is the peer default timeout, so calls with shorter deadlines
// may expire up to one period late.
func (self *Peer) Start(rootCtx context.Context) {
	self.lifecycleLock.Lock()
	defer self.lifecycleLock.Unlock()
	if self.cancelFunc != nil {
		self.Log().Warnf("monitor already started")
		return
	}
	ctx, cancel := context.WithCancel(rootCtx)
	self.cancelFunc = cancel
	self.done = make(chan struct{})
	go self.run(ctx, self.done)
}

// Stop cancels the monitor and waits for its ticker loop to exit. A sweep
// in progress finishes on its own, so Stop may be called from a callback.
// Pending requests are kept and will still expire if the peer is started
// again.
func (self *Peer) Stop() {
	self.lifecycleLock.Lock()
	defer self.lifecycleLock.Unlock()
	if self.cancelFunc == nil {
		return
	}
	self.cancelFunc()
	<-self.done
	self.cancelFunc = nil
	self.done = nil
}

func (self *Peer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(self.config.Timeout)
	defer ticker.Stop()

	self.Log().Debugf("monitor runs every %s", self.config.Timeout)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept := make(chan struct{})
			go func() {
				defer close(swept)
				self.Monitor()
			}()
			select {
			case <-ctx.Done():
				return
			case <-swept:
			}
		}
	}
}

// Monitor performs one sweep, expiring every request whose deadline has
// passed through the regular reply dispatch path. It returns the number of
// requests expired.
func (self *Peer) Monitor() int {
	now := self.now()
	self.mu.Lock()
	expired := self.reqs.expired(now)
	self.mu.Unlock()

	count := 0
	for _, rid := range expired {
		if self.dispatchReply(rid, string(ErrTimeout)) {
			requestsExpired.Inc()
			count++
		}
	}
	if count > 0 {
		self.Log().Debugf("%d requests expired", count)
	}
	return count
}
