package app

import (
	"context"
	"github.com/superisaac/rpcmq/config"
	"github.com/superisaac/rpcmq/mq"
	"github.com/superisaac/rpcmq/rpc"
	"github.com/superisaac/rpcmq/worker"
)

type App struct {
	Config *config.Config

	ctx        context.Context
	cancelFunc func()

	client    mq.MQClient
	transport *mq.MQTransport
	peer      *rpc.Peer
	worker    *worker.ServiceWorker
}
