package playbook

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
	"io/ioutil"
)

func (self *PlaybookConfig) Load(filePath string) error {
	log.Infof("read playbook from %s", filePath)
	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return errors.Wrap(err, "ioutil.ReadFile")
	}
	return self.LoadBytes(data)
}

func (self *PlaybookConfig) LoadBytes(data []byte) error {
	err := yaml.Unmarshal(data, self)
	if err != nil {
		return errors.Wrap(err, "yaml.Unmarshal")
	}
	return self.validateValues()
}

func (self *PlaybookConfig) validateValues() error {
	if self.Version == "" {
		self.Version = "1.0"
	}
	for name, method := range self.Methods {
		if name == "" {
			return errors.New("empty method name")
		}
		if method == nil {
			return errors.Errorf("method %s has no body", name)
		}
		if method.Shell != nil && method.Shell.Timeout != nil && *method.Shell.Timeout <= 0 {
			return errors.Errorf("method %s timeout must be positive", name)
		}
	}
	return nil
}
