package rbac

import "github.com/example/wordquiz/pkg/models"

// Permissions used across the service
const (
	PermTopicView    = "topic:view"
	PermTopicPreview = "topic:preview" // open hidden and not yet available topics
	PermTopicEdit    = "topic:edit"
	PermQuizTake     = "quiz:take"
)

// RolePermissions is the default policy
var RolePermissions = map[string][]string{
	models.RoleStudent: {
		PermTopicView,
		PermQuizTake,
	},
	models.RoleTeacher: {
		"topic:*",
		PermQuizTake,
	},
	models.RoleAdmin: {
		"*",
	},
}
