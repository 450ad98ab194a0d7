package domain

import "encoding/json"

// Clasificación del resultado de una llamada al proveedor de modelos.
const (
	ModelOK           = "ok"
	ModelHTTP429      = "http_429"
	ModelHTTP5xx      = "http_5xx"
	ModelHTTP4xx      = "http_4xx"
	ModelNetworkError = "network_error"
	ModelInvalidJSON  = "invalid_json"
	ModelNoAPIKey     = "no_api_key"
)

// ChatMessage es un mensaje del historial de una chat completion.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolFunction describe la función expuesta como herramienta al modelo.
type ToolFunction struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  ArgsSchema `json:"parameters"`
}

// ToolSpec es una herramienta del listado enviado al modelo; una por acción
// legal de la decisión.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ReasoningParams ajusta el razonamiento del modelo cuando el jugador lo
// configura.
type ReasoningParams struct {
	Effort string `json:"effort"`
}

// ModelRequest es la petición de una chat completion con tool calling.
type ModelRequest struct {
	Model      string           `json:"model"`
	Messages   []ChatMessage    `json:"messages"`
	Tools      []ToolSpec       `json:"tools"`
	ToolChoice string           `json:"tool_choice"`
	Reasoning  *ReasoningParams `json:"reasoning,omitempty"`
}

// ToolCall es la llamada a herramienta devuelta por el modelo. Arguments es
// el JSON crudo de los argumentos.
type ToolCall struct {
	Name      string
	Arguments string
}

// ChatUsage es el consumo de tokens reportado por el proveedor.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelResult es el resultado clasificado de una llamada al modelo. ErrorType
// distinto de "ok" marca un fallo de transporte o de contenido.
type ModelResult struct {
	ErrorType  string
	StatusCode int
	RequestID  string
	Err        string

	ToolCall *ToolCall
	Usage    *ChatUsage
	Raw      json.RawMessage
}

// OK indica que la llamada produjo una respuesta utilizable.
func (r ModelResult) OK() bool {
	return r.ErrorType == ModelOK
}
