package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/wordquiz/pkg/models"
)

func TestHas(t *testing.T) {
	tests := []struct {
		role, perm string
		want       bool
	}{
		{models.RoleStudent, PermQuizTake, true},
		{models.RoleStudent, PermTopicView, true},
		{models.RoleStudent, PermTopicPreview, false},
		{models.RoleStudent, PermTopicEdit, false},
		{models.RoleTeacher, PermTopicPreview, true},
		{models.RoleTeacher, PermTopicEdit, true},
		{models.RoleTeacher, PermQuizTake, true},
		{models.RoleAdmin, "anything:at-all", true},
		{"", PermTopicView, false},
		{"guest", PermTopicView, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Has(tt.role, tt.perm), "%s / %s", tt.role, tt.perm)
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(map[string][]string{"reader": {"doc:read"}})
	assert.True(t, c.Any("reader", "doc:write", "doc:read"))
	assert.False(t, c.Any("reader", "doc:write"))
}

func TestRequire(t *testing.T) {
	h := Require(PermTopicEdit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/topics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), models.RoleStudent)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), models.RoleTeacher)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
