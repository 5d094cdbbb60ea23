package worker

import (
	"context"
	"encoding/json"
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/superisaac/rpcmq/codec"
	"github.com/superisaac/rpcmq/mq"
	"github.com/superisaac/rpcmq/rpc"
	"io/ioutil"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	log.SetOutput(ioutil.Discard)
	os.Exit(m.Run())
}

func startPeer(ctx context.Context, client mq.MQClient, name string) *rpc.Peer {
	tr := mq.NewMQTransport(client, name)
	peer := rpc.NewPeer(tr, &rpc.Config{Name: name, Timeout: 200 * time.Millisecond})
	peer.Start(ctx)
	go tr.Listen(ctx, peer)
	return peer
}

func TestWorker(t *testing.T) {
	assert := assert.New(t)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := mq.NewMemoryMQClient()

	// prepare worker and listen on its inbox
	worker := NewServiceWorker(rootCtx, startPeer(rootCtx, client, "worker"))
	defer worker.Peer().Stop()
	err := worker.On("echo", func(req *WorkerRequest, payload interface{}) (interface{}, error) {
		var text string
		if err := codec.DecodeInto(payload, &text); err != nil {
			return nil, rpc.ToSentinel("BAD_PARAMS")
		}
		return "echo: " + text, nil
	})
	assert.Nil(err)
	assert.NotNil(worker.On("echo", nil))
	assert.NotNil(worker.On("", nil))

	worker.On("add", func(req *WorkerRequest, payload interface{}) (interface{}, error) {
		var nums []int
		if err := codec.DecodeInto(payload, &nums); err != nil {
			return nil, rpc.ToSentinel("BAD_PARAMS")
		}
		sum := 0
		for _, n := range nums {
			sum += n
		}
		return sum, nil
	})
	worker.On("broken", func(req *WorkerRequest, payload interface{}) (interface{}, error) {
		return nil, fmt.Errorf("disk on fire")
	})
	worker.On("panics", func(req *WorkerRequest, payload interface{}) (interface{}, error) {
		panic("oops")
	})
	worker.On("slow", func(req *WorkerRequest, payload interface{}) (interface{}, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}, WithTimeout(20*time.Millisecond))
	assert.Equal([]string{"_ping", "add", "broken", "echo", "panics", "slow"}, worker.Keys())

	caller := startPeer(rootCtx, client, "caller")
	defer caller.Stop()
	time.Sleep(20 * time.Millisecond)

	res, err := caller.CallWait(rootCtx, "worker", "echo", "hi")
	assert.Nil(err)
	assert.Equal("echo: hi", res)

	res, err = caller.CallWait(rootCtx, "worker", "echo", 12)
	assert.Nil(res)
	assert.Equal(rpc.SentinelError("ERR_BAD_PARAMS"), err)

	res, err = caller.CallWait(rootCtx, "worker", "add", []int{1, 2, 3})
	assert.Nil(err)
	assert.Equal(json.Number("6"), res)

	res, err = caller.CallWait(rootCtx, "worker", "_ping", nil)
	assert.Nil(err)
	assert.Equal("pong", res)

	_, err = caller.CallWait(rootCtx, "worker", "nothere", nil)
	assert.Equal(rpc.ErrMethodNotFound, err)

	_, err = caller.CallWait(rootCtx, "worker", "broken", nil)
	assert.Equal(rpc.ErrInternal, err)

	_, err = caller.CallWait(rootCtx, "worker", "panics", nil)
	assert.Equal(rpc.ErrInternal, err)

	_, err = caller.CallWait(rootCtx, "worker", "slow", nil)
	assert.Equal(rpc.ErrTimeout, err)

	worker.Wait()
}

func TestWorkerCancelledWithConn(t *testing.T) {
	assert := assert.New(t)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := mq.NewMemoryMQClient()
	connCtx, connCancel := context.WithCancel(rootCtx)
	worker := NewServiceWorker(connCtx, startPeer(rootCtx, client, "worker"))

	entered := make(chan struct{})
	worker.On("block", func(req *WorkerRequest, payload interface{}) (interface{}, error) {
		close(entered)
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	caller := startPeer(rootCtx, client, "caller")
	defer caller.Stop()
	time.Sleep(20 * time.Millisecond)

	resolved := make(chan error, 1)
	caller.Call(rootCtx, "worker", "block", nil, func(err error, result interface{}) {
		resolved <- err
	})

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("handler never called")
	}
	connCancel()

	waited := make(chan struct{})
	go func() {
		worker.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("handler not cancelled with its connection context")
	}

	select {
	case err := <-resolved:
		assert.Equal(rpc.ErrInternal, err)
	case <-time.After(time.Second):
		assert.Fail("reply never arrived")
	}
}
