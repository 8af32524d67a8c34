package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kaptinlin/jsonrepair"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes records and names the extension of record files.
type Codec interface {
	// Extension returns the record file extension including the dot.
	Extension() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Built-in codecs.
var (
	// JSON stores records as indented JSON in .json files. It is the default.
	JSON Codec = jsonCodec{}

	// LenientJSON is JSON that attempts to repair malformed input before
	// giving up. Records it writes are plain JSON.
	LenientJSON Codec = lenientJSONCodec{}

	// YAML stores records in .yaml files. Struct fields without a yaml tag
	// use their json tag.
	YAML Codec = yamlCodec{}

	// Msgpack stores records in .msgpack files, keyed by json tags.
	Msgpack Codec = msgpackCodec{}
)

// CodecByName returns the codec for "json", "lenient-json", "yaml" or
// "msgpack". An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON, nil
	case "lenient-json":
		return LenientJSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack":
		return Msgpack, nil
	default:
		return nil, fmt.Errorf("entity: unknown codec %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Extension() string { return RecordExtension }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type lenientJSONCodec struct{ jsonCodec }

// Unmarshal retries with repaired input when the record has a JSON syntax
// error.
func (lenientJSONCodec) Unmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); !ok {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return fmt.Errorf("%w (repair: %v)", err, rerr)
	}
	return json.Unmarshal([]byte(fixed), v)
}

type yamlCodec struct{}

func (yamlCodec) Extension() string { return ".yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

type msgpackCodec struct{}

func (msgpackCodec) Extension() string { return ".msgpack" }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
