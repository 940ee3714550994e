package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrPayloadInvalid reports a conversion job payload that fails the schema.
var ErrPayloadInvalid = errors.New("validation: conversion payload invalid")

// convertJobSchema is the top-level shape contract for conversion payloads.
// Deliberately shallow: blocks entries are validated structurally by the
// decoder, and unknown block types are a renderer concern, not a payload one.
var convertJobSchema = map[string]any{
	"type":     "object",
	"required": []string{"document_id", "version", "blocks"},
	"properties": map[string]any{
		"document_id": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"version": map[string]any{
			"type":    "integer",
			"minimum": 0,
		},
		"blocks": map[string]any{
			"type": "array",
		},
		"metadata": map[string]any{
			"type": "object",
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrPayloadInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrPayloadInvalid
}

// ValidateConvertPayload checks the job payload against the conversion
// schema. A nil payload fails with a required-fields issue, matching an empty
// object.
func ValidateConvertPayload(payload map[string]any) error {
	schema, err := convertSchema()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := schema.Validate(normalizePayload(payload)); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

func convertSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		encoded, err := json.Marshal(convertJobSchema)
		if err != nil {
			compileErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("convert_job.json", bytes.NewReader(encoded)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile("convert_job.json")
	})
	return compiled, compileErr
}

// normalizePayload round-trips values that did not originate from
// encoding/json (typed slices, ints) into the generic form the validator
// expects. Payloads built in-process carry []map[string]any or int64 values
// that jsonschema would otherwise reject on type grounds.
func normalizePayload(payload map[string]any) any {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return payload
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var generic any
	if err := decoder.Decode(&generic); err != nil {
		return payload
	}
	return generic
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
