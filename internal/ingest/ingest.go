// Package ingest decodes answer events arriving from files, stdin or HTTP
// bodies and validates them against an embedded JSON schema.
package ingest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/studyforge/internal/progress"
)

//go:embed answer.schema.json
var answerSchemaJSON []byte

const answerSchemaURL = "schema://answer.json"

var (
	compileOnce  sync.Once
	answerSchema *jsonschema.Schema
	compileErr   error
)

// ValidationError reports an answer event that failed decoding or schema
// validation. Index is the position in a batch, or -1 for a single event.
type ValidationError struct {
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid answer event: %v", e.Err)
	}
	return fmt.Sprintf("invalid answer event at index %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Schema returns the compiled answer event schema.
func Schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(answerSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse answer schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		c.AssertFormat()
		if err := c.AddResource(answerSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		answerSchema, compileErr = c.Compile(answerSchemaURL)
	})
	return answerSchema, compileErr
}

// DecodeAnswer validates and decodes a single answer event.
func DecodeAnswer(raw []byte) (progress.Answer, error) {
	return decodeOne(raw, -1)
}

// DecodeBatch reads a JSON array of answer events, or a single object, and
// validates every element. The first invalid element aborts the batch.
func DecodeBatch(r io.Reader) ([]progress.Answer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		a, err := decodeOne(data, -1)
		if err != nil {
			return nil, err
		}
		return []progress.Answer{a}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &ValidationError{Index: -1, Err: fmt.Errorf("expected a JSON array of answer events: %w", err)}
	}

	answers := make([]progress.Answer, 0, len(raws))
	for i, raw := range raws {
		a, err := decodeOne(raw, i)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func decodeOne(raw []byte, index int) (progress.Answer, error) {
	compiled, err := Schema()
	if err != nil {
		return progress.Answer{}, err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return progress.Answer{}, &ValidationError{Index: index, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := compiled.Validate(doc); err != nil {
		return progress.Answer{}, &ValidationError{Index: index, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var a progress.Answer
	if err := json.Unmarshal(raw, &a); err != nil {
		return progress.Answer{}, &ValidationError{Index: index, Err: err}
	}
	return a, nil
}
