package config

import (
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	log.SetOutput(ioutil.Discard)
	os.Exit(m.Run())
}

func TestConfig(t *testing.T) {
	assert := assert.New(t)

	cfgdata := `
---
name: worker1
timeout: 500
mq:
  url: redis://127.0.0.1:6379/2
  poll_interval: 5
`

	cfg := NewConfig()
	err := cfg.LoadYamldata([]byte(cfgdata))
	assert.Nil(err)
	assert.Equal("worker1", cfg.Name)
	assert.Equal(500*time.Millisecond, cfg.TimeoutDuration())
	assert.Equal(5*time.Millisecond, cfg.MQ.PollDuration())

	u, err := cfg.MQ.URL()
	assert.Nil(err)
	assert.Equal("redis://127.0.0.1:6379/2", u.String())
	assert.Equal("redis", u.Scheme)
	assert.Equal("/2", u.Path)
	assert.NotNil(cfg.MQ.url)
}

func TestConfigDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg := NewConfig()
	err := cfg.LoadYamldata([]byte("name: caller\n"))
	assert.Nil(err)
	assert.Equal(DefaultTimeout, cfg.Timeout)
	assert.Equal(10*time.Second, cfg.TimeoutDuration())
	assert.Equal(DefaultMQUrl, cfg.MQ.Urlstr)
	assert.Equal(time.Duration(0), cfg.MQ.PollDuration())
}

func TestConfigInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, data := range []string{
		"timeout: -1\n",
		"mq:\n  url: http://127.0.0.1\n",
		"mq:\n  url: redis://x\n  poll_interval: -3\n",
		"timeout: [1, 2]\n",
	} {
		cfg := NewConfig()
		assert.NotNil(cfg.LoadYamldata([]byte(data)), "data %q", data)
	}
}

func TestConfigLoadFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "rpcmq.yml")
	err := ioutil.WriteFile(path, []byte("name: fromfile\nmq:\n  url: memory://\n"), 0644)
	assert.Nil(err)

	cfg := NewConfig()
	assert.Nil(cfg.Load(path))
	assert.Equal("fromfile", cfg.Name)
	u, err := cfg.MQ.URL()
	assert.Nil(err)
	assert.Equal("memory", u.Scheme)

	assert.NotNil(NewConfig().Load(filepath.Join(dir, "missing.yml")))
}

func TestMQConfigURLUnvalidated(t *testing.T) {
	assert := assert.New(t)

	mqcfg := MQConfig{Urlstr: "redis://bad host:port"}
	assert.NotPanics(func() {
		u, err := mqcfg.URL()
		assert.NotNil(err)
		assert.Nil(u)
	})

	mqcfg = MQConfig{Urlstr: "memory://"}
	u, err := mqcfg.URL()
	assert.Nil(err)
	assert.Equal("memory", u.Scheme)
}
