package rpc

import (
	"github.com/VictoriaMetrics/metrics"
)

var (
	callsIssued     = metrics.NewCounter("rpcmq_calls_issued_total")
	repliesMatched  = metrics.NewCounter("rpcmq_replies_matched_total")
	repliesDropped  = metrics.NewCounter("rpcmq_replies_dropped_total")
	requestsExpired = metrics.NewCounter("rpcmq_requests_expired_total")
	requestErrors   = metrics.NewCounter("rpcmq_request_errors_total")
)
