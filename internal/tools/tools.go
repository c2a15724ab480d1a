package tools

import (
	"persona-agent/internal/llm"
)

// Tool names. The set is closed: every name listed here must have a handler
// in the executor and a definition below, cross-checked by NewCatalog.
const (
	ToolRecordUserDetails     = "record_user_details"
	ToolRecordUnknownQuestion = "record_unknown_question"
)

// implemented is the set of tool names the executor can dispatch
var implemented = map[string]struct{}{
	ToolRecordUserDetails:     {},
	ToolRecordUnknownQuestion: {},
}

// Definitions returns the declarations for all available tools, in the order
// they are presented to the model.
func Definitions() []llm.Tool {
	return []llm.Tool{
		{
			Type: "function",
			Function: llm.FunctionDefinition{
				Name:        ToolRecordUserDetails,
				Description: "Use this tool to record that a user is interested in being in touch and provided an email address",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"email": map[string]interface{}{
							"type":        "string",
							"description": "The user's email address",
						},
						"name": map[string]interface{}{
							"type":        "string",
							"description": "The user's name (optional)",
						},
						"notes": map[string]interface{}{
							"type":        "string",
							"description": "Extra context or message (optional)",
						},
					},
					"required":             []string{"email"},
					"additionalProperties": false,
				},
			},
		},
		{
			Type: "function",
			Function: llm.FunctionDefinition{
				Name:        ToolRecordUnknownQuestion,
				Description: "Use this tool to record any question that couldn't be answered",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"question": map[string]interface{}{
							"type":        "string",
							"description": "The question text",
						},
					},
					"required":             []string{"question"},
					"additionalProperties": false,
				},
			},
		},
	}
}
