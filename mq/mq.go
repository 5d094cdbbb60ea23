package mq

import (
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/url"
)

func NewMQClient(mqurl *url.URL) (MQClient, error) {
	switch mqurl.Scheme {
	case "redis":
		c, err := NewRedisMQClient(mqurl)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "memory":
		return NewMemoryMQClient(), nil
	default:
		return nil, errors.Errorf("unsupported mq scheme %s", mqurl.Scheme)
	}
}

// Deliver hands one inbox item to the inbound peer.
func Deliver(inbound Inbound, item MQItem) {
	switch item.Kind {
	case KindCall:
		inbound.HandleRequestFrame(item.Origin, item.Frame)
	case KindReply:
		inbound.HandleReplyFrame(item.RID, item.Frame)
	default:
		log.Warnf("unknown mq item kind %s at %s", item.Kind, item.Offset)
	}
}

func NewMQTransport(client MQClient, name string) *MQTransport {
	return &MQTransport{
		client: client,
		name:   name,
	}
}

func (self *MQTransport) Name() string {
	return self.name
}

func (self *MQTransport) Client() MQClient {
	return self.client
}

func (self *MQTransport) Log() *log.Entry {
	return log.WithFields(log.Fields{
		"inbox": self.name,
	})
}

func (self *MQTransport) SendCall(ctx context.Context, destination string, frame string) error {
	_, err := self.client.Add(ctx, destination, MQItem{
		Kind:   KindCall,
		Origin: self.name,
		Frame:  frame,
	})
	return err
}

func (self *MQTransport) SendReply(ctx context.Context, destination string, id string, frame string) error {
	_, err := self.client.Add(ctx, destination, MQItem{
		Kind:   KindReply,
		RID:    id,
		Origin: self.name,
		Frame:  frame,
	})
	return err
}

// Listen reads the transport's inbox and delivers every new item to inbound
// until ctx is done. Items appended before Listen starts are skipped.
func (self *MQTransport) Listen(rootctx context.Context, inbound Inbound) error {
	ctx, cancel := context.WithCancel(rootctx)
	defer cancel()

	itemSub := make(chan MQItem, 100)
	errCh := make(chan error, 1)
	go func() {
		errCh <- self.client.Subscribe(ctx, self.name, itemSub)
	}()

	self.Log().Debugf("listening")
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil {
				return errors.Wrap(err, "mq.Subscribe")
			}
			return nil
		case item := <-itemSub:
			Deliver(inbound, item)
		}
	}
}
