package main

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/superisaac/jsoff"
	"github.com/superisaac/rpcmq/app"
	"github.com/superisaac/rpcmq/codec"
	"time"
)

// the inbox subscription starts at the current tail, so give it a moment
// before the call goes out
const listenDelay = 100 * time.Millisecond

var callCmd = &cobra.Command{
	Use:   "call <destination> <key> [payload-json]",
	Short: "Issue one call and print the reply",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runCall,
}

func init() {
	callCmd.Flags().String("name", "", "peer name to receive the reply, default is a random one")
}

func runCall(cmd *cobra.Command, args []string) error {
	application := app.Application()
	cfg := application.Config
	if err := loadConfig(cmd, cfg); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = "rpcmq-cli-" + jsoff.NewUuid()
	}

	var payload interface{}
	if len(args) > 2 {
		payload = codec.Decode(args[2])
		if payload == nil && args[2] != "null" {
			return errors.Errorf("payload is not valid json: %s", args[2])
		}
	}

	if err := application.Setup(); err != nil {
		return err
	}
	go func() {
		if err := application.Run(); err != nil {
			log.Errorf("listen error %s", err)
		}
	}()
	defer application.Stop()
	time.Sleep(listenDelay)

	// the reply or the peer's own timeout sentinel arrives first
	ctx, cancel := context.WithTimeout(application.Context(), 3*cfg.TimeoutDuration())
	defer cancel()
	res, err := application.Peer().CallWait(ctx, args[0], args[1], payload)
	if err != nil {
		return err
	}
	fmt.Println(codec.Encode(res))
	return nil
}
