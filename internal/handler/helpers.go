package handler

import (
	"errors"
	"reflect"
	"time"

	"github.com/BistroPdv/bistro-api/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apierror.Validation("Corpo da requisição inválido", err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQueryAndValidate is the query-string counterpart of bindAndValidate.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, apierror.Validation("Parâmetros de consulta inválidos", err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fe.Field()+": "+fe.Tag())
			}
			respondError(c, apierror.Validation("Erro de validação", details...))
			return false
		}
		respondError(c, apierror.Internal())
		return false
	}
	return true
}

// parseIDParam parses a :param path segment as UUID, writing the 400 itself.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apierror.Validation("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError renders any service error as the standard envelope. Unknown
// errors are logged under a generated errorId and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	errorID := uuid.NewString()

	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		log.Error().
			Str("error_id", errorID).
			Str("path", c.Request.URL.Path).
			Err(err).
			Msg("unexpected handler error")
		apiErr = apierror.Internal()
	}

	c.AbortWithStatusJSON(apiErr.Status, apierror.Envelope{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		ErrorCode:  apiErr.Code,
		Details:    apiErr.Details,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Request.URL.Path,
		Method:     c.Request.Method,
		ErrorID:    errorID,
	})
}
