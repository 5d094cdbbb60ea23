package mq

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

const memoryMaxLen = 10000

// MemoryMQClient keeps sections in process memory. Offsets have the same
// "<seq>-0" shape as redis stream ids.
type MemoryMQClient struct {
	lock     sync.RWMutex
	seq      uint64
	sections map[string][]MQItem

	PollInterval time.Duration
}

func NewMemoryMQClient() *MemoryMQClient {
	return &MemoryMQClient{
		sections:     make(map[string][]MQItem),
		PollInterval: time.Millisecond,
	}
}

func parseOffset(offset string) (uint64, error) {
	seq, _, _ := strings.Cut(offset, "-")
	n, err := strconv.ParseUint(seq, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "strconv.ParseUint")
	}
	return n, nil
}

func (self *MemoryMQClient) Add(ctx context.Context, section string, item MQItem) (string, error) {
	self.lock.Lock()
	defer self.lock.Unlock()

	self.seq++
	item.Offset = fmt.Sprintf("%d-0", self.seq)
	items := append(self.sections[section], item)
	if len(items) > memoryMaxLen {
		items = items[len(items)-memoryMaxLen:]
	}
	self.sections[section] = items
	return item.Offset, nil
}

func (self *MemoryMQClient) Chunk(ctx context.Context, section string, prevID string, count int64) (MQChunk, error) {
	if count <= 0 {
		return MQChunk{}, errors.Errorf("count %d <= 0", count)
	}
	self.lock.RLock()
	defer self.lock.RUnlock()

	items := self.sections[section]
	if prevID == "" {
		lastOffset := firstOffset
		if len(items) > 0 {
			lastOffset = items[len(items)-1].Offset
		}
		return MQChunk{Items: []MQItem{}, LastOffset: lastOffset}, nil
	}

	prevSeq, err := parseOffset(prevID)
	if err != nil {
		return MQChunk{}, err
	}
	chunk := MQChunk{Items: []MQItem{}, LastOffset: prevID}
	for _, item := range items {
		seq, _ := parseOffset(item.Offset)
		if seq <= prevSeq {
			continue
		}
		chunk.Items = append(chunk.Items, item)
		chunk.LastOffset = item.Offset
		if int64(len(chunk.Items)) >= count {
			break
		}
	}
	return chunk, nil
}

func (self *MemoryMQClient) Tail(ctx context.Context, section string, count int64) (MQChunk, error) {
	if count <= 0 {
		return MQChunk{}, errors.Errorf("count %d <= 0", count)
	}
	self.lock.RLock()
	defer self.lock.RUnlock()

	items := self.sections[section]
	if int64(len(items)) > count {
		items = items[int64(len(items))-count:]
	}
	chunk := MQChunk{Items: append([]MQItem{}, items...)}
	if len(items) > 0 {
		chunk.LastOffset = items[len(items)-1].Offset
	}
	return chunk, nil
}

func (self *MemoryMQClient) Subscribe(rootctx context.Context, section string, output chan MQItem) error {
	return subscribe(rootctx, self, section, output, self.PollInterval)
}
