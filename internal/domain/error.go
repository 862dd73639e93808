package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Message   string `json:"message" example:"Invalid email format"`
	Timestamp string `json:"timestamp" example:"2025-01-15T10:30:00Z"`
}
