package model

// InitiatorRole кто инициирует перенос урока
type InitiatorRole string

const (
	RoleLearner InitiatorRole = "learner"
	RoleTutor   InitiatorRole = "tutor"
)

// ParseRole разбирает роль из строки (CLI, конфиг)
func ParseRole(s string) (InitiatorRole, bool) {
	switch InitiatorRole(s) {
	case RoleLearner:
		return RoleLearner, true
	case RoleTutor:
		return RoleTutor, true
	default:
		return "", false
	}
}
