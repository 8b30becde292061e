package handlers

import (
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
)

var registerOnce sync.Once

// RegisterValidation makes binding errors report JSON field names instead
// of Go struct field names. Safe to call more than once.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// fail writes the error envelope for err. NotFound maps to 404 with
// notFoundMsg, NotValid to 400 with the error text, anything else to an
// opaque 500.
func fail(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, errors.NotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFoundMsg})
	case errors.Is(err, errors.NotValid):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		log.Printf("[handlers] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// bindJSON binds the request body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, bindingMessage(err))
		return false
	}
	return true
}

// bindingMessage turns a binding error into a client-facing sentence.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	var missing, other []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "email":
			other = append(other, "Invalid email format")
		case "gt":
			other = append(other, fe.Field()+" must be greater than "+fe.Param())
		default:
			other = append(other, fe.Field()+" is invalid")
		}
	}
	if len(missing) > 0 {
		return "Missing required fields: " + strings.Join(missing, ", ")
	}
	return strings.Join(other, "; ")
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, param, invalidMsg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, invalidMsg)
		return 0, false
	}
	return id, true
}

// queryInt reads a non-negative integer query parameter. Missing, malformed
// or negative values fall back to def; an explicit 0 yields an empty page.
// Values above ceiling are clamped.
func queryInt(c *gin.Context, key string, def, ceiling int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return def
	}
	return min(n, ceiling)
}
