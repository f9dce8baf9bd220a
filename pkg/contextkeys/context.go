package contextkeys

// Keys used with gin.Context.Set/Get. Plain strings because gin keys are strings.
const (
	UserIDKey   = "userID"
	UserRoleKey = "role"
	UserKey     = "user"
)
