package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Funções puras de validação e normalização dos campos de usuário.
// Nenhuma função deste pacote faz I/O.

// emailPattern replica o padrão de e-mail do serviço: charset permitido na
// parte local; domínio com labels de 1 a 63 caracteres, sem hífen no início
// ou no fim de cada label.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// cpfPattern exige exatamente 11 dígitos decimais, sem formatação.
var cpfPattern = regexp.MustCompile(`^\d{11}$`)

// validate é a instância compartilhada do go-playground/validator para as
// regras declaradas nas tags das structs de request.
var validate = newValidator()

// newValidator configura a instância para reportar os campos pelo nome JSON,
// não pelo nome do campo Go, e registra a regra "notblank": a tag required
// só rejeita a string vazia, mas campo só de espaços também é inválido.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Capitalize coloca em maiúscula a primeira letra de cada palavra separada
// por espaço e o restante em minúscula (e.g., "joão DA silva" -> "João Da Silva").
// Entrada vazia retorna vazia.
func Capitalize(input string) string {
	if input == "" {
		return input
	}

	words := strings.Fields(input)
	out := make([]string, 0, len(words))

	for _, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		out = append(out, string(runes))
	}

	return strings.Join(out, " ")
}

// NormalizeEmail normaliza o e-mail para comparação, armazenamento e
// checagem de unicidade: trim + minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail verifica o formato do e-mail. Espera entrada já normalizada.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidCPF verifica se o CPF tem exatamente 11 dígitos, sem separadores.
func ValidCPF(cpf string) bool {
	return cpfPattern.MatchString(cpf)
}

// FormatCPF insere os separadores de exibição: "###.###.###-##".
// Usado apenas nas respostas de leitura, nunca no armazenamento.
func FormatCPF(cpf string) string {
	if len(cpf) != 11 {
		return cpf
	}
	return cpf[0:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:11]
}

// IsPast verifica se a data é estritamente anterior à data atual (somente a
// parte de data conta, não o horário).
func IsPast(date time.Time, now time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(n)
}

// Age calcula a idade em anos completos decorridos entre a data de nascimento
// e a data atual (semântica de período de calendário: se o aniversário deste
// ano ainda não chegou, subtrai um). Nunca é validada contra faixa alguma:
// não há idade mínima ou máxima no cadastro.
func Age(dateOfBirth time.Time, now time.Time) int {
	years := now.Year() - dateOfBirth.Year()

	// Aniversário ainda não ocorreu no ano corrente
	if now.Month() < dateOfBirth.Month() ||
		(now.Month() == dateOfBirth.Month() && now.Day() < dateOfBirth.Day()) {
		years--
	}

	if years < 0 {
		return 0
	}
	return years
}

// Struct valida uma struct de request pelas tags `validate` e traduz os erros
// de campo para mensagens legíveis, uma por linha de campo violada.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldMessage converte um erro de campo do validator em mensagem de API.
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "min":
		return field + " must be a minimum of " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "len":
		return field + " must contain " + fe.Param() + " characters"
	case "numeric":
		return field + " must contain only numbers"
	case "email":
		return field + " must be a valid email address"
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
