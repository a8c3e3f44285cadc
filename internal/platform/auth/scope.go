package auth

// ScopeAdmin satisfies any required scope.
const ScopeAdmin = "admin"

func HasScope(scopes []string, required string) bool {
	for _, s := range scopes {
		if s == required || s == ScopeAdmin {
			return true
		}
	}
	return false
}
