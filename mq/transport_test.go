package mq

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/superisaac/rpcmq/rpc"
	"testing"
	"time"
)

func startPeer(ctx context.Context, t *testing.T, client MQClient, name string, timeout time.Duration) *rpc.Peer {
	tr := NewMQTransport(client, name)
	peer := rpc.NewPeer(tr, &rpc.Config{Name: name, Timeout: timeout})
	peer.Start(ctx)
	t.Cleanup(peer.Stop)
	go func() {
		if err := tr.Listen(ctx, peer); err != nil {
			t.Errorf("listen %s: %s", name, err)
		}
	}()
	return peer
}

func testTransportRoundTrip(t *testing.T, client MQClient) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := startPeer(ctx, t, client, "alice", time.Second)
	bob := startPeer(ctx, t, client, "bob", time.Second)
	bob.OnRequest(func(req *rpc.InboundRequest) {
		switch req.Key {
		case "echo":
			req.Reply(ctx, req.Payload)
		case "fail":
			req.ReplyError(ctx, "DENIED")
		}
	})
	time.Sleep(50 * time.Millisecond)

	res, err := alice.CallWait(ctx, "bob", "echo", map[string]interface{}{"ok": true})
	assert.Nil(err)
	assert.Equal(map[string]interface{}{"ok": true}, res)

	res, err = alice.CallWait(ctx, "bob", "echo", 42)
	assert.Nil(err)
	assert.Equal(json.Number("42"), res)

	res, err = alice.CallWait(ctx, "bob", "fail", nil)
	assert.Nil(res)
	assert.Equal(rpc.SentinelError("ERR_DENIED"), err)

	// nobody listens on carol, the monitor expires the call
	start := time.Now()
	res, err = alice.CallWait(ctx, "carol", "echo", 1, rpc.WithTimeout(100*time.Millisecond))
	assert.Nil(res)
	assert.Equal(rpc.ErrTimeout, err)
	assert.True(time.Since(start) >= 100*time.Millisecond)
	assert.Equal(0, alice.Pending())
}

func TestMemoryTransport(t *testing.T) {
	testTransportRoundTrip(t, NewMemoryMQClient())
}

func TestRedisTransport(t *testing.T) {
	mc := newRedisMQClient(t)
	mc.PollInterval = time.Millisecond
	testTransportRoundTrip(t, mc)
}

func TestTransportRequestError(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewMemoryMQClient()
	bob := startPeer(ctx, t, client, "bob", time.Second)
	errCh := make(chan error, 1)
	bob.OnRequestError(func(origin string, err error) {
		assert.Equal("mallory", origin)
		errCh <- err
	})
	time.Sleep(20 * time.Millisecond)

	_, err := client.Add(ctx, "bob", MQItem{Kind: KindCall, Origin: "mallory", Frame: "{garbage"})
	assert.Nil(err)

	select {
	case err := <-errCh:
		assert.Equal(rpc.ErrNilFrame, err)
	case <-time.After(2 * time.Second):
		assert.Fail("request error not signalled")
	}
}

type recordInbound struct {
	requests []string
	replies  []string
}

func (self *recordInbound) HandleRequestFrame(origin string, raw string) {
	self.requests = append(self.requests, origin+" "+raw)
}

func (self *recordInbound) HandleReplyFrame(id string, raw string) bool {
	self.replies = append(self.replies, id+" "+raw)
	return true
}

func TestDeliver(t *testing.T) {
	assert := assert.New(t)

	inbound := &recordInbound{}
	Deliver(inbound, MQItem{Kind: KindCall, Origin: "alice", Frame: `["r","k",1]`})
	Deliver(inbound, MQItem{Kind: KindReply, RID: "r", Frame: `2`})
	Deliver(inbound, MQItem{Kind: "bogus"})
	assert.Equal([]string{`alice ["r","k",1]`}, inbound.requests)
	assert.Equal([]string{`r 2`}, inbound.replies)
}
