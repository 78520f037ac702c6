package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-radar/internal/calculator"
	"contact-radar/internal/directory"
)

var errBadRequest = errors.New("bad request")

func writeError(c *gin.Context, err error) {
	var dup *directory.DuplicateError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{
			"ok":        false,
			"error":     err.Error(),
			"duplicate": verdictView(dup.Verdict),
		})
		return
	case errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, directory.ErrInvalidContact),
		errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, directory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
