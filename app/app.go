package app

import (
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/superisaac/rpcmq/config"
	"github.com/superisaac/rpcmq/mq"
	"github.com/superisaac/rpcmq/rpc"
	"github.com/superisaac/rpcmq/worker"
	"sync"
)

var (
	app     *App
	appOnce sync.Once
)

func Application() *App {
	appOnce.Do(func() {
		app = NewApp()
	})
	return app
}

func NewApp() *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:     config.NewConfig(),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Setup validates the config and builds the mq client, the transport, the
// peer and its service worker. It must be called before Run.
func (self *App) Setup() error {
	if err := self.Config.Validate(); err != nil {
		return err
	}
	if self.Config.Name == "" {
		return errors.New("peer name is empty")
	}

	mqurl, err := self.Config.MQ.URL()
	if err != nil {
		return err
	}
	client, err := mq.NewMQClient(mqurl)
	if err != nil {
		return err
	}
	if interval := self.Config.MQ.PollDuration(); interval > 0 {
		switch c := client.(type) {
		case *mq.RedisMQClient:
			c.PollInterval = interval
		case *mq.MemoryMQClient:
			c.PollInterval = interval
		}
	}
	self.client = client
	self.transport = mq.NewMQTransport(client, self.Config.Name)
	self.peer = rpc.NewPeer(self.transport, &rpc.Config{
		Name:    self.Config.Name,
		Timeout: self.Config.TimeoutDuration(),
	})
	self.worker = worker.NewServiceWorker(self.ctx, self.peer)
	return nil
}

func (self *App) Peer() *rpc.Peer {
	return self.peer
}

func (self *App) Worker() *worker.ServiceWorker {
	return self.worker
}

func (self *App) Client() mq.MQClient {
	return self.client
}

// Run starts the timeout monitor and serves the inbox until Stop is called.
func (self *App) Run() error {
	if self.peer == nil {
		return errors.New("app is not setup")
	}
	self.peer.Start(self.ctx)
	defer func() {
		self.peer.Stop()
		self.worker.Wait()
	}()

	log.Infof("peer %s listens on %s", self.Config.Name, self.Config.MQ.Urlstr)
	return self.transport.Listen(self.ctx, self.peer)
}

func (self *App) Context() context.Context {
	return self.ctx
}

func (self *App) Stop() {
	self.cancelFunc()
}
