package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/scribe-core/core/inference"
	"github.com/koscakluka/scribe-core/internal/utils"
	"go.opentelemetry.io/otel/attribute"
)

// GenerateNote produces a structured clinical note through the JSON-schema
// response format.
func (c *Client) GenerateNote(ctx context.Context, transcript string, hints string) (*inference.ClinicalNote, error) {
	ctx, span := tracer.Start(ctx, "generate clinical note")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(inference.ClinicalNote{})

	schemaString, _ := schema.MarshalJSON()
	span.SetAttributes(attribute.String("request.schema", string(schemaString)))

	task := inference.TaskNoteGeneration
	reqBody := requestBody{
		Model: c.model,
		Messages: []message{
			{Role: messageRoleSystem, Content: task.Instructions()},
			{Role: messageRoleUser, Content: task.Prompt(inference.Input{Transcript: transcript, Hints: hints})},
		},
		ResponseFormat: utils.Ptr(chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   "ClinicalNote",
				Schema: *schema,
				Strict: true,
			},
		}),
	}

	responseBody, err := c.complete(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}

	if len(responseBody.Choices) == 0 {
		err := fmt.Errorf("response contained no choices")
		span.RecordError(err)
		return nil, err
	}

	content := responseBody.Choices[0].Message.Content
	if split := strings.Split(content, "```"); len(split) > 1 {
		content = split[1]
	}

	var note inference.ClinicalNote
	if err := json.Unmarshal([]byte(content), &note); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return nil, err
	}

	return &note, nil
}

type chatResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	// Name further identifies the schema in the response.
	Name string `json:"name"`
	// Description is the optional description of the response schema.
	Description string `json:"description,omitempty"`
	// Schema is the reflected response schema.
	Schema jsonschema.Schema `json:"schema"`
	// Strict determines whether the schema is enforced on generation.
	Strict bool `json:"strict"`
}
