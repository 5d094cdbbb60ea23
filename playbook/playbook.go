package playbook

import (
	"bytes"
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/superisaac/rpcmq/codec"
	"github.com/superisaac/rpcmq/rpc"
	"github.com/superisaac/rpcmq/worker"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrExit is replied when a command exits with a non-zero code.
const ErrExit rpc.SentinelError = "ERR_EXIT"

func NewPlaybook() *Playbook {
	return &Playbook{}
}

func (self MethodT) CanExecute() bool {
	return self.Shell != nil && self.Shell.Cmd != ""
}

// ExecuteShell runs the command with the call payload as JSON on stdin and
// decodes its stdout as the result.
func (self MethodT) ExecuteShell(req *worker.WorkerRequest, methodName string) (interface{}, error) {
	ctx := req.Context()
	if self.Shell.Timeout != nil {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(*self.Shell.Timeout))
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", self.Shell.Cmd)
	cmd.Env = append(os.Environ(), self.Shell.Env...)
	cmd.Stdin = strings.NewReader(codec.Encode(req.Msg.Payload))
	// children of sh may hold stdout open after a kill
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if cmd.Process != nil {
		req.Log().Infof("command for %s received output, pid %#v", methodName, cmd.Process.Pid)
	}
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}
	parsed := codec.Decode(string(out))
	if parsed == nil && string(out) != "null" {
		return nil, errors.Errorf("command output is not json: %.100s", out)
	}
	return parsed, nil
}

// Register binds every executable method of the playbook to w.
func (self *Playbook) Register(w *worker.ServiceWorker) error {
	for name, method := range self.Config.Methods {
		if !method.CanExecute() {
			log.Warnf("cannot exec method %s", name)
			continue
		}
		log.Infof("playbook register %s", name)

		name, method := name, method
		err := w.On(name, func(req *worker.WorkerRequest, payload interface{}) (interface{}, error) {
			req.Log().Infof("begin exec %s", name)
			v, err := method.ExecuteShell(req, name)
			if err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					stderr := string(exitErr.Stderr)
					if len(stderr) > 100 {
						stderr = stderr[:100]
					}
					req.Log().Warnf(
						"command exit, code: %d, stderr: %s",
						exitErr.ExitCode(),
						stderr)
					return nil, ErrExit
				}
				req.Log().Warnf("error exec %s, %s", name, err.Error())
			} else {
				req.Log().Infof("end exec %s", name)
			}
			return v, err
		})
		if err != nil {
			return errors.Wrapf(err, "register %s", name)
		}
	}
	return nil
}
