package worker

import (
	"context"
	"github.com/superisaac/rpcmq/rpc"
	"sync"
	"time"
)

// client side structures
type WorkerRequest struct {
	Msg *rpc.InboundRequest
	ctx context.Context
}

type WorkerCallback func(req *WorkerRequest, payload interface{}) (interface{}, error)

type WorkerHandler struct {
	callback WorkerCallback
	timeout  time.Duration
}

type WorkerHandlerSetter func(h *WorkerHandler)

type ServiceWorker struct {
	connCtx        context.Context
	peer           *rpc.Peer
	handlerLock    sync.RWMutex
	workerHandlers map[string]*WorkerHandler
	running        sync.WaitGroup
}
