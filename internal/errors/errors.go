package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnauthorized          = NewAppError("UNAUTHORIZED", "Não autorizado", http.StatusUnauthorized)
	ErrBadRequest            = NewAppError("BAD_REQUEST", "Requisição inválida", http.StatusBadRequest)
	ErrInternalServer        = NewAppError("INTERNAL_SERVER_ERROR", "Erro interno do servidor", http.StatusInternalServerError)
	ErrConflict              = NewAppError("CONFLICT", "Conflito de recursos", http.StatusConflict)
	ErrValidation            = NewAppError("VALIDATION_ERROR", "Erro de validação", http.StatusBadRequest)
	ErrDatabase              = NewAppError("DATABASE_ERROR", "Erro no banco de dados", http.StatusInternalServerError)
	ErrUpdateFailed          = NewAppError("UPDATE_FAILED", "Falha ao atualizar registro", http.StatusInternalServerError)
	ErrInsertFailed          = NewAppError("INSERT_FAILED", "Falha ao inserir registro", http.StatusInternalServerError)
	ErrAlreadyProcessed      = NewAppError("ALREADY_PROCESSED", "Operação já processada", http.StatusOK)
	ErrInvalidTransition     = NewAppError("INVALID_TRANSITION", "Transição de status inválida", http.StatusConflict)
	ErrInvalidCredentials    = NewAppError("INVALID_CREDENTIALS", "Credenciais inválidas", http.StatusUnauthorized)
	ErrEmailAlreadyExists    = NewAppError("EMAIL_ALREADY_EXISTS", "Email já cadastrado", http.StatusConflict)
	ErrUserNotFound          = NewAppError("USER_NOT_FOUND", "Usuário não encontrado", http.StatusNotFound)
	ErrTransactionNotFound   = NewAppError("TRANSACTION_NOT_FOUND", "Transação não encontrada", http.StatusNotFound)
	ErrCategoryNotFound      = NewAppError("CATEGORY_NOT_FOUND", "Categoria não encontrada", http.StatusNotFound)
	ErrCardNotFound          = NewAppError("CARD_NOT_FOUND", "Cartão não encontrado", http.StatusNotFound)
	ErrInvoiceNotFound       = NewAppError("INVOICE_NOT_FOUND", "Fatura não encontrada", http.StatusNotFound)
	ErrRecurringNotFound     = NewAppError("RECURRING_NOT_FOUND", "Lançamento fixo não encontrado", http.StatusNotFound)
	ErrStagingItemNotFound   = NewAppError("STAGING_ITEM_NOT_FOUND", "Item importado não encontrado", http.StatusNotFound)
	ErrStagingAlreadyDecided = NewAppError("STAGING_ALREADY_DECIDED", "Item importado já foi decidido", http.StatusConflict)
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails devolve uma copia com os detalhes somados aos existentes.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func WrapError(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Details != nil {
		clone.Details = make(map[string]interface{}, len(e.Details))
		for k, v := range e.Details {
			clone.Details[k] = v
		}
	} else {
		clone.Details = make(map[string]interface{})
	}
	return &clone
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode informa se err (ou algum erro encapsulado) e um AppError com o codigo dado.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, context.Canceled) {
		return WrapError(err, "REQUEST_CANCELED", "Requisição cancelada pelo cliente", http.StatusRequestTimeout)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(err, "REQUEST_TIMEOUT", "Tempo limite da requisição excedido", http.StatusGatewayTimeout)
	}

	return WrapError(err, "UNKNOWN_ERROR", "Erro desconhecido", http.StatusInternalServerError)
}

func NewAuthError(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Details:    make(map[string]interface{}),
	}
}

func NewValidationError(field, message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

func NewInvalidTransitionError(from, to string) *AppError {
	return ErrInvalidTransition.WithDetails(map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

func NewDatabaseError(err error) *AppError {
	return WrapError(err, "DATABASE_ERROR", "Erro ao executar operação no banco de dados", http.StatusInternalServerError)
}

func NewConflictError(resource string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    fmt.Sprintf("%s já existe", resource),
		StatusCode: http.StatusConflict,
		Details: map[string]interface{}{
			"resource": resource,
		},
	}
}

func ParseValidationErrors(err error) *AppError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ErrBadRequest.WithError(err)
	}

	fieldErrors := make([]map[string]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		translatedField := translateFieldName(fieldErr.Field())
		fieldErrors = append(fieldErrors, map[string]string{
			"field":   translatedField,
			"message": translateValidationError(fieldErr),
		})
	}

	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Erro de validação nos campos",
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"fields": fieldErrors,
		},
	}
}

func translateFieldName(field string) string {
	fieldLower := strings.ToLower(field)
	fieldMap := map[string]string{
		"amount":            "valor",
		"value":             "valor",
		"category_id":       "categoria",
		"categoryid":        "categoria",
		"decidedcategoryid": "categoria",
		"context":           "contexto",
		"decidedcontext":    "contexto",
		"stagingitemid":     "item importado",
		"label":             "apelido do cartão",
		"closingday":        "dia de fechamento",
		"dueday":            "dia de vencimento",
		"installments":      "parcelas",
		"type":              "tipo",
		"description":       "descrição",
		"name":              "nome",
		"email":             "email",
		"password":          "senha",
		"date":              "data",
	}
	if translated, ok := fieldMap[fieldLower]; ok {
		return translated
	}
	return field
}

func translateValidationError(fe validator.FieldError) string {
	fieldName := translateFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fieldName)
	case "email":
		return "Email inválido"
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", fieldName, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", fieldName, fe.Param())
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s", fieldName, fe.Param())
	case "lte":
		return fmt.Sprintf("%s deve ser menor ou igual a %s", fieldName, fe.Param())
	case "gt":
		return fmt.Sprintf("%s deve ser maior que %s", fieldName, fe.Param())
	case "lt":
		return fmt.Sprintf("%s deve ser menor que %s", fieldName, fe.Param())
	case "ne":
		return fmt.Sprintf("%s deve ser diferente de %s", fieldName, fe.Param())
	case "len":
		return fmt.Sprintf("%s deve ter exatamente %s caracteres", fieldName, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s deve ser um dos valores: %s", fieldName, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s deve ser um UUID válido", fieldName)
	case "url":
		return fmt.Sprintf("%s deve ser uma URL válida", fieldName)
	case "datetime":
		return fmt.Sprintf("%s deve ser uma data/hora válida", fieldName)
	case "numeric":
		return fmt.Sprintf("%s deve ser um valor numérico", fieldName)
	case "alphanum":
		return fmt.Sprintf("%s deve conter apenas letras e números", fieldName)
	default:
		return fmt.Sprintf("Validação '%s' falhou para %s", fe.Tag(), fieldName)
	}
}
