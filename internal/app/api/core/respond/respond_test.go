package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"name": "wg0"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"wg0"}`, w.Body.String())
}

func TestJSON_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, nil)

	assert.Equal(t, "null", w.Body.String())
}

func TestString(t *testing.T) {
	w := httptest.NewRecorder()
	String(w, http.StatusTeapot, "short and stout")

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "text/plain;charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "short and stout", w.Body.String())
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	Attachment(w, http.StatusOK, "laptop.conf", "text/plain", strings.NewReader("[Interface]"))

	assert.Equal(t, `attachment; filename="laptop.conf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "[Interface]", w.Body.String())
}

func TestStatus(t *testing.T) {
	w := httptest.NewRecorder()
	Status(w, http.StatusNoContent)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
