package mq

// currently we use redis streams
import (
	"context"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const firstOffset = "0-0"

func streamsKey(section string) string {
	return "rpcmq:" + section
}

func xmsgStr(xmsg *redis.XMessage, key string) string {
	if v, ok := xmsg.Values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func convertXMsgs(xmsgs []redis.XMessage, defaultOffset string, offsetOnly bool) MQChunk {
	items := []MQItem{}
	lastOffset := defaultOffset
	for _, xmsg := range xmsgs {
		lastOffset = xmsg.ID
		kind := xmsgStr(&xmsg, "kind")
		if kind == "" {
			continue
		}
		item := MQItem{
			Offset: xmsg.ID,
			Kind:   kind,
			RID:    xmsgStr(&xmsg, "rid"),
			Origin: xmsgStr(&xmsg, "origin"),
			Frame:  xmsgStr(&xmsg, "frame"),
		}
		items = append(items, item)
	}

	if offsetOnly {
		items = []MQItem{}
	}
	return MQChunk{
		Items:      items,
		LastOffset: lastOffset,
	}
}

func redisOptions(u *url.URL) (*redis.Options, error) {
	if u.Scheme != "redis" {
		return nil, errors.New("scheme is not redis")
	}

	sdb := strings.TrimPrefix(u.Path, "/")
	db := 0
	if sdb != "" {
		var err error
		db, err = strconv.Atoi(sdb)
		if err != nil {
			return nil, errors.Wrap(err, "strconv.Atoi")
		}
	}
	pwd, ok := u.User.Password()
	if !ok {
		pwd = ""
	}
	opt := &redis.Options{
		Addr:     u.Host,
		Password: pwd,
		DB:       db,
	}
	return opt, nil
}

type RedisMQClient struct {
	rdb *redis.Client

	PollInterval time.Duration
}

func NewRedisClient(mqurl *url.URL) (*redis.Client, error) {
	opts, err := redisOptions(mqurl)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func NewRedisMQClient(mqurl *url.URL) (*RedisMQClient, error) {
	c, err := NewRedisClient(mqurl)
	if err != nil {
		return nil, err
	}
	return &RedisMQClient{
		rdb:          c,
		PollInterval: defaultPollInterval,
	}, nil
}

func (self RedisMQClient) Close() error {
	return self.rdb.Close()
}

func (self RedisMQClient) Add(ctx context.Context, section string, item MQItem) (string, error) {
	values := map[string]interface{}{
		"kind":   item.Kind,
		"rid":    item.RID,
		"origin": item.Origin,
		"frame":  item.Frame,
	}
	addedID, err := self.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamsKey(section),
		Values: values,
		MaxLen: 10000,
	}).Result()
	return addedID, err
}

func (self RedisMQClient) Chunk(ctx context.Context, section string, prevID string, count int64) (MQChunk, error) {
	if count <= 0 {
		log.Panicf("count %d <= 0", count)
	}
	skey := streamsKey(section)
	if prevID == "" {
		// get the last item
		xmsgs, err := self.rdb.XRevRangeN(ctx, skey, "+", "-", 1).Result()
		if err != nil {
			return MQChunk{}, err
		}
		// assert len(msgs) <= 1
		if len(xmsgs) > 1 {
			log.Panicf("xrevrange(%s, +, -, 1) got more than 1 items", skey)
		}
		return convertXMsgs(xmsgs, firstOffset, true), nil
	}

	streams, err := self.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{skey, prevID},
		Count:   count,
		Block:   -1,
	}).Result()
	if err == redis.Nil {
		return convertXMsgs(nil, prevID, false), nil
	} else if err != nil {
		return MQChunk{}, err
	}
	xmsgs := []redis.XMessage{}
	for _, stream := range streams {
		xmsgs = append(xmsgs, stream.Messages...)
	}
	return convertXMsgs(xmsgs, prevID, false), nil
}

func (self RedisMQClient) Tail(ctx context.Context, section string, count int64) (MQChunk, error) {
	if count <= 0 {
		log.Panicf("count %d <= 0", count)
	}

	revmsgs, err := self.rdb.XRevRangeN(ctx, streamsKey(section), "+", "-", count).Result()
	if err != nil {
		return MQChunk{}, err
	}

	xmsgs := make([]redis.XMessage, len(revmsgs))
	// revert the list
	for i, xmsg := range revmsgs {
		xmsgs[len(revmsgs)-1-i] = xmsg
	}
	return convertXMsgs(xmsgs, "", false), nil
}

func (self RedisMQClient) Subscribe(rootctx context.Context, section string, output chan MQItem) error {
	return subscribe(rootctx, self, section, output, self.PollInterval)
}

// subscribe polls chunks after the current tail and pushes items to output
func subscribe(rootctx context.Context, client MQClient, section string, output chan MQItem, interval time.Duration) error {
	ctx, cancel := context.WithCancel(rootctx)

	defer func() {
		log.Debugf("subscribe %s stop", section)
		cancel()
	}()

	if interval <= 0 {
		interval = defaultPollInterval
	}

	prevID := ""
	for {
		chunk, err := client.Chunk(ctx, section, prevID, 100)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		prevID = chunk.LastOffset
		if len(chunk.Items) > 0 {
			log.Debugf("got chunk of %d items, lastOffset=%s", len(chunk.Items), chunk.LastOffset)
			for _, item := range chunk.Items {
				select {
				case <-ctx.Done():
					return nil
				case output <- item:
				}
			}
		} else {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
				continue
			}
		}
	}
}
