package main

import (
	"github.com/VictoriaMetrics/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/superisaac/rpcmq/app"
	"github.com/superisaac/rpcmq/playbook"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve calls sent to the peer's inbox",
	Long:  `Run a worker peer that answers _ping, _keys, echo and the shell methods of an optional playbook.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("name", "rpcmq", "peer name, the inbox other peers send calls to")
	serveCmd.Flags().String("playbook", "", "path to <playbook.yml> mapping call keys to shell commands")
	serveCmd.Flags().String("metrics-bind", "", "serve prometheus metrics at <bind>/metrics, disabled when empty")
}

func startMetrics(bind string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	go func() {
		log.Infof("metrics served at %s", bind)
		if err := http.ListenAndServe(bind, mux); err != nil {
			log.Errorf("metrics server error %s", err)
		}
	}()
}

func runServe(cmd *cobra.Command, args []string) error {
	application := app.Application()
	if err := loadConfig(cmd, application.Config); err != nil {
		return err
	}
	if err := application.Setup(); err != nil {
		return err
	}
	if err := application.RegisterBuiltins(); err != nil {
		return err
	}

	if path := viper.GetString("playbook"); path != "" {
		pb := playbook.NewPlaybook()
		if err := pb.Config.Load(path); err != nil {
			return err
		}
		if err := pb.Register(application.Worker()); err != nil {
			return err
		}
	}

	if bind := viper.GetString("metrics-bind"); bind != "" {
		startMetrics(bind)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Infof("got signal %s, stopping", sig)
		application.Stop()
	}()

	return application.Run()
}
