package mq

import (
	"context"
	"github.com/stretchr/testify/assert"
	"net/url"
	"testing"
)

func TestMemoryMQ(t *testing.T) {
	assert := assert.New(t)

	mc := NewMemoryMQClient()
	ctx := context.Background()

	chunk, err := mc.Chunk(ctx, "testing", "", 10)
	assert.Nil(err)
	assert.Equal("0-0", chunk.LastOffset)

	id0, err := mc.Add(ctx, "testing", MQItem{Kind: KindCall, Origin: "alice"})
	assert.Nil(err)
	assert.Equal("1-0", id0)
	_, err = mc.Add(ctx, "other", MQItem{Kind: KindCall, Origin: "carol"})
	assert.Nil(err)
	id2, err := mc.Add(ctx, "testing", MQItem{Kind: KindReply, RID: "r1", Origin: "bob"})
	assert.Nil(err)
	assert.Equal("3-0", id2)

	chunk, err = mc.Chunk(ctx, "testing", "0-0", 10)
	assert.Nil(err)
	assert.Equal(2, len(chunk.Items))
	assert.Equal(id2, chunk.LastOffset)

	chunk, err = mc.Chunk(ctx, "testing", "0-0", 1)
	assert.Nil(err)
	assert.Equal(1, len(chunk.Items))
	assert.Equal(id0, chunk.LastOffset)

	chunk, err = mc.Chunk(ctx, "testing", id0, 10)
	assert.Nil(err)
	assert.Equal(1, len(chunk.Items))
	assert.Equal("r1", chunk.Items[0].RID)

	chunk, err = mc.Tail(ctx, "testing", 1)
	assert.Nil(err)
	assert.Equal(1, len(chunk.Items))
	assert.Equal(id2, chunk.LastOffset)

	_, err = mc.Chunk(ctx, "testing", "bad", 10)
	assert.NotNil(err)
	_, err = mc.Chunk(ctx, "testing", "0-0", 0)
	assert.NotNil(err)
}

func TestNewMQClient(t *testing.T) {
	assert := assert.New(t)

	u, _ := url.Parse("memory://")
	c, err := NewMQClient(u)
	assert.Nil(err)
	_, ok := c.(*MemoryMQClient)
	assert.True(ok)

	u, _ = url.Parse("redis://127.0.0.1:6379/1")
	c, err = NewMQClient(u)
	assert.Nil(err)
	_, ok = c.(*RedisMQClient)
	assert.True(ok)

	u, _ = url.Parse("kafka://127.0.0.1:9092")
	_, err = NewMQClient(u)
	assert.NotNil(err)
}
