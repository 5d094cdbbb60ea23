package codec

import (
	"encoding/json"
	log "github.com/sirupsen/logrus"
	"strings"
)

// Encode serializes a value into its textual wire form. Map keys are
// emitted in sorted order so equal values always produce equal text.
// Values that cannot be represented in JSON are encoded as null.
func Encode(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warnf("codec encode %T: %s", v, err)
		return "null"
	}
	return string(data)
}

// Decode parses text produced by Encode. Malformed input yields nil, which
// callers treat as "no usable payload". Numbers decode as json.Number.
func Decode(text string) interface{} {
	if !json.Valid([]byte(text)) {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// DecodeInto converts a decoded payload into a typed value.
func DecodeInto(v interface{}, output interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, output)
}
