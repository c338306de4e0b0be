package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// wsSchemaRegistry compiles the incoming-frame schemas once and reuses them
// for every connection; jsonschema.Schema is safe for concurrent Validate
// calls once compiled.
type wsSchemaRegistry struct {
	once    sync.Once
	initErr error
	base    *jsonschema.Schema
	types   map[string]*jsonschema.Schema
}

var wsSchemas wsSchemaRegistry

func initWSSchemas() error {
	wsSchemas.once.Do(func() {
		base, err := jsonschema.CompileString("ws_envelope", wsEnvelopeSchema)
		if err != nil {
			wsSchemas.initErr = err
			return
		}
		wsSchemas.base = base

		byType := map[string]string{
			"select_workspace": wsSelectWorkspaceSchema,
			"audio_start":      wsAudioStartSchema,
			"audio_end":        wsAudioEndSchema,
			"text_message":     wsTextMessageSchema,
			"image_message":    wsImageMessageSchema,
			"interrupt":        wsInterruptSchema,
			"ping":             wsPingSchema,
		}
		wsSchemas.types = make(map[string]*jsonschema.Schema, len(byType))
		for name, schema := range byType {
			compiled, err := jsonschema.CompileString("ws_"+name, schema)
			if err != nil {
				wsSchemas.initErr = err
				return
			}
			wsSchemas.types[name] = compiled
		}
	})
	return wsSchemas.initErr
}

// validateIncomingFrame checks a raw text frame against the envelope schema
// shared by every incoming message, then against the schema specific to its
// "type" discriminator, if one is registered.
func validateIncomingFrame(raw []byte) error {
	if err := initWSSchemas(); err != nil {
		return err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if err := wsSchemas.base.Validate(payload); err != nil {
		return err
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return fmt.Errorf("frame must be a JSON object")
	}
	typ, _ := obj["type"].(string)
	if schema := wsSchemas.types[typ]; schema != nil {
		if err := schema.Validate(payload); err != nil {
			return err
		}
	}
	return nil
}

const wsEnvelopeSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": true
}`

const wsSelectWorkspaceSchema = `{
  "type": "object",
  "required": ["type", "name"],
  "properties": {
    "type": { "const": "select_workspace" },
    "name": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": true
}`

const wsAudioStartSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": { "const": "audio_start" },
    "sample_rate": { "type": "integer", "minimum": 8000, "maximum": 48000 },
    "channels": { "type": "integer", "minimum": 1, "maximum": 2 },
    "encoding": { "type": "string" }
  },
  "additionalProperties": true
}`

const wsAudioEndSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": { "const": "audio_end" }
  },
  "additionalProperties": true
}`

const wsTextMessageSchema = `{
  "type": "object",
  "required": ["type", "text"],
  "properties": {
    "type": { "const": "text_message" },
    "text": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": true
}`

const wsImageMessageSchema = `{
  "type": "object",
  "required": ["type", "data"],
  "properties": {
    "type": { "const": "image_message" },
    "data": { "type": "string", "minLength": 1 },
    "media_type": { "type": "string", "minLength": 1 },
    "text": { "type": "string" }
  },
  "additionalProperties": true
}`

const wsInterruptSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": { "const": "interrupt" }
  },
  "additionalProperties": true
}`

const wsPingSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": { "const": "ping" }
  },
  "additionalProperties": true
}`
