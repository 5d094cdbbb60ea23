package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
	"io/ioutil"
	"net/url"
	"os"
	"time"
)

const (
	DefaultTimeout = 10000
	DefaultMQUrl   = "redis://127.0.0.1:6379/0"
)

type MQConfig struct {
	Urlstr       string `yaml:"url"`
	PollInterval int    `yaml:"poll_interval,omitempty"`

	url *url.URL `yaml:"-"`
}

type Config struct {
	// peer name, also the inbox other peers send to
	Name string `yaml:"name"`

	// default call timeout in milliseconds
	Timeout int `yaml:"timeout,omitempty"`

	MQ MQConfig `yaml:"mq"`
}

func NewConfig() *Config {
	return &Config{}
}

// MQConfig
func (self MQConfig) Empty() bool {
	return self.Urlstr == ""
}

// URL returns the parsed mq url, parsing Urlstr when Validate has not run.
func (self *MQConfig) URL() (*url.URL, error) {
	if self.url == nil {
		u, err := url.Parse(self.Urlstr)
		if err != nil {
			return nil, errors.Wrap(err, "url.Parse")
		}
		self.url = u
	}
	return self.url, nil
}

func (self MQConfig) PollDuration() time.Duration {
	return time.Duration(self.PollInterval) * time.Millisecond
}

func (self *MQConfig) validateValues() error {
	if self.Urlstr == "" {
		self.Urlstr = DefaultMQUrl
	}
	u, err := url.Parse(self.Urlstr)
	if err != nil {
		return errors.Wrap(err, "url.Parse")
	}
	if u.Scheme != "redis" && u.Scheme != "memory" {
		return errors.Errorf("unsupported mq url scheme %s", u.Scheme)
	}
	if self.PollInterval < 0 {
		return errors.New("mq poll_interval must not be negative")
	}
	self.url = u
	return nil
}

// Config
func (self Config) TimeoutDuration() time.Duration {
	return time.Duration(self.Timeout) * time.Millisecond
}

func (self *Config) Load(yamlPath string) error {
	if _, err := os.Stat(yamlPath); os.IsNotExist(err) {
		return errors.Wrap(err, "os.Stat")
	}

	data, err := ioutil.ReadFile(yamlPath)
	if err != nil {
		return errors.Wrap(err, "ioutil.ReadFile")
	}
	return self.LoadYamldata(data)
}

func (self *Config) LoadYamldata(yamlData []byte) error {
	err := yaml.Unmarshal(yamlData, self)
	if err != nil {
		return errors.Wrap(err, "yaml.Unmarshal")
	}
	return self.Validate()
}

// Validate fills defaults and checks the values.
func (self *Config) Validate() error {
	if self.Timeout == 0 {
		self.Timeout = DefaultTimeout
	} else if self.Timeout < 0 {
		return errors.New("timeout must be positive")
	}
	return self.MQ.validateValues()
}
