package mq

import (
	"context"
	"time"
)

const (
	KindCall  = "call"
	KindReply = "reply"

	defaultPollInterval = 10 * time.Millisecond
)

// MQItem is one frame stored in a peer's inbox.
type MQItem struct {
	Offset string `json:"offset"`
	Kind   string `json:"kind"`
	RID    string `json:"rid,omitempty"`
	Origin string `json:"origin"`
	Frame  string `json:"frame"`
}

type MQChunk struct {
	Items      []MQItem `json:"items"`
	LastOffset string   `json:"lastoffset"`
}

type MQClient interface {
	// append an item to MQ
	Add(ctx context.Context, section string, item MQItem) (string, error)

	// Get a trunk given last offset, empty offset means the current tail
	Chunk(ctx context.Context, section string, lastOffset string, count int64) (MQChunk, error)

	// Get the tail chunk of queue, aka queue[-count:]
	Tail(ctx context.Context, section string, count int64) (MQChunk, error)

	// Subscribe to change of queue
	Subscribe(rootctx context.Context, section string, output chan MQItem) error
}

// Inbound receives frames read from an inbox. *rpc.Peer implements it.
type Inbound interface {
	HandleRequestFrame(origin string, raw string)
	HandleReplyFrame(id string, raw string) bool
}

// MQTransport carries rpc frames over an MQClient, one section per peer name.
type MQTransport struct {
	client MQClient
	name   string
}
