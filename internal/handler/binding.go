package handler

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/GTDGit/pricelist_api/internal/utils"
)

// bindJSON decodes the body into dst and turns binding failures into a
// ValidationError naming the fields.
func bindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &utils.ValidationError{}
		for _, fe := range verrs {
			name := jsonName(fe.Field())
			out.Add(name, name+" is required")
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return utils.NewValidationError(typeErr.Field, typeErr.Field+" has the wrong type")
	}
	return utils.NewValidationError("body", "request body must be a valid JSON object")
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	r := []rune(field)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// pathID parses the :id parameter as a positive integer.
func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError("id", "id must be a positive integer")
	}
	return id, nil
}
