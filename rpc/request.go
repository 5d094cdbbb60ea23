package rpc

import (
	"context"
	log "github.com/sirupsen/logrus"
	"github.com/superisaac/rpcmq/codec"
	"time"
)

// WithTimeout overrides the peer default deadline for one call. Non-positive
// durations keep the default.
func WithTimeout(timeout time.Duration) CallOption {
	return func(opts *CallOptions) {
		if timeout > 0 {
			opts.Timeout = timeout
		}
	}
}

// WithMeta attaches an arbitrary option entry to the call.
func WithMeta(key string, value interface{}) CallOption {
	return func(opts *CallOptions) {
		if opts.Meta == nil {
			opts.Meta = map[string]interface{}{}
		}
		opts.Meta[key] = value
	}
}

// Request methods
func (self *Request) Deadline() time.Time {
	return self.CreatedAt.Add(self.Options.Timeout)
}

func (self *Request) Expired(now time.Time) bool {
	return now.After(self.Deadline())
}

func (self *Request) Log() *log.Entry {
	return log.WithFields(log.Fields{
		"rid": self.ID,
		"key": self.Key,
	})
}

func (self *Request) resolve(err error, result interface{}) {
	if self.callback == nil {
		self.Log().Debugf("no callback, reply discarded")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			self.Log().Errorf("callback panic: %v", r)
		}
	}()
	self.callback(err, result)
}

// InboundRequest methods
func (self *InboundRequest) Log() *log.Entry {
	return log.WithFields(log.Fields{
		"rid":    self.ID,
		"key":    self.Key,
		"origin": self.Origin,
	})
}

// Reply encodes result and routes it back to the origin tagged with the
// request id. Only the first reply is sent.
func (self *InboundRequest) Reply(ctx context.Context, result interface{}) error {
	err := ErrAlreadyReplied
	self.replyOnce.Do(func() {
		err = self.peer.sendReply(ctx, self.Origin, self.ID, codec.Encode(result))
	})
	return err
}

// ReplyError answers the request with an error sentinel.
func (self *InboundRequest) ReplyError(ctx context.Context, code string) error {
	return self.Reply(ctx, string(ToSentinel(code)))
}
