package domain

import "time"

// Envelope padronizado de resposta da API:
// {success, message, data?, timestamp} e a variante paginada com
// {content, pagination}.

// APIResponse é o envelope genérico de resposta.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewSuccessResponse cria um envelope de sucesso com dados opcionais.
func NewSuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	}
}

// NewErrorResponse cria um envelope de falha (sem dados).
func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Timestamp: now(),
	}
}

// AuthResponse é o envelope de registro e login, que carrega o token emitido.
type AuthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token,omitempty"`
	User      *UserData `json:"user,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// NewAuthSuccess cria o envelope de sucesso do registro/login.
func NewAuthSuccess(message string, token string, user UserData) AuthResponse {
	return AuthResponse{
		Success:   true,
		Message:   message,
		Token:     token,
		User:      &user,
		Timestamp: now(),
	}
}

// PaginationInfo descreve a página retornada em listagens.
type PaginationInfo struct {
	CurrentPage   int   `json:"currentPage"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	IsFirst       bool  `json:"isFirst"`
	IsLast        bool  `json:"isLast"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

// NewPaginationInfo deriva os metadados de página a partir da requisição
// normalizada e do total de elementos.
func NewPaginationInfo(page PageRequest, totalElements int64) PaginationInfo {
	totalPages := int((totalElements + int64(page.Size) - 1) / int64(page.Size))

	isLast := page.Page >= totalPages-1
	if totalPages == 0 {
		isLast = true
	}

	return PaginationInfo{
		CurrentPage:   page.Page,
		PageSize:      page.Size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		IsFirst:       page.Page == 0,
		IsLast:        isLast,
		HasNext:       !isLast,
		HasPrevious:   page.Page > 0,
	}
}

// PaginatedResponse é o envelope das listagens paginadas.
type PaginatedResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Content    []UserData      `json:"content,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

// NewPaginatedSuccess cria o envelope de sucesso de uma listagem.
func NewPaginatedSuccess(message string, content []UserData, pagination PaginationInfo) PaginatedResponse {
	return PaginatedResponse{
		Success:    true,
		Message:    message,
		Content:    content,
		Pagination: &pagination,
		Timestamp:  now(),
	}
}

// NewPaginatedError cria o envelope de falha (ou de página vazia) de uma listagem.
func NewPaginatedError(message string) PaginatedResponse {
	return PaginatedResponse{
		Success:   false,
		Message:   message,
		Timestamp: now(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
