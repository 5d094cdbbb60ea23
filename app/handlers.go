package app

import (
	"github.com/superisaac/rpcmq/worker"
)

// RegisterBuiltins adds the keys every served peer answers besides _ping.
func (self *App) RegisterBuiltins() error {
	w := self.worker
	if err := w.On("echo", func(req *worker.WorkerRequest, payload interface{}) (interface{}, error) {
		return payload, nil
	}); err != nil {
		return err
	}
	return w.On("_keys", func(req *worker.WorkerRequest, payload interface{}) (interface{}, error) {
		return w.Keys(), nil
	})
}
