package response

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

// TranslateFunc renders an i18n key for the request locale.
type TranslateFunc func(key string, data map[string]any) string

const translateKey = "marmora.translate"

// WithTranslate makes error messages in this request localizable.
func WithTranslate(c *gin.Context, fn TranslateFunc) { c.Set(translateKey, fn) }

func translate(c *gin.Context) TranslateFunc {
	if v, ok := c.Get(translateKey); ok {
		if fn, ok := v.(TranslateFunc); ok && fn != nil {
			return fn
		}
	}
	return nil
}

type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := code
	if err != nil {
		msg = err.Error()
	}
	if tr := translate(c); tr != nil && code != "" {
		if v := tr("errors."+code, nil); v != "errors."+code {
			msg = v
		}
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps a service error onto the envelope. Validation errors carry
// a localized message per field; unknown errors become 500 "internal".
func RespondErr(c *gin.Context, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		fields := map[string]string{}
		if tr := translate(c); tr != nil {
			fields = verr.Localize(tr)
		} else {
			for _, f := range verr.Fields {
				fields[f.Field] = f.Code
			}
		}
		env := ErrorEnvelope{Error: APIError{Message: "validation failed", Code: "validation_failed", Fields: fields}}
		if tr := translate(c); tr != nil {
			env.Error.Message = tr("errors.validation_failed", nil)
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, env)
		return
	}

	if ae, ok := apierr.As(err); ok {
		var rl interface{ RetryAfterSeconds() int }
		if errors.As(ae.Err, &rl) {
			c.Header("Retry-After", strconv.Itoa(rl.RetryAfterSeconds()))
		}
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	_ = c.Error(err)
	RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
}

// RetryAfter converts a wait into whole seconds for the Retry-After header.
func RetryAfter(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
