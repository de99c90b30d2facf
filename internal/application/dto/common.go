package dto

// ErrorBody código y mensaje de error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse cuerpo de error HTTP: {"error": {"code", "message"}}.
// Data lleva información adicional cuando el cliente la necesita para reaccionar al error.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
	Data  any       `json:"data,omitempty"`
}

// NewError arma el cuerpo de error.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

// PageRequest paginación por cursor para listados.
type PageRequest struct {
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Cursor string `query:"cursor"`
}

// Pagination metadatos de página en respuestas.
type Pagination struct {
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor,omitempty"`
}

// Page respuesta paginada.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// MessageResponse respuesta simple para operaciones sin cuerpo.
type MessageResponse struct {
	Message string `json:"message"`
}
