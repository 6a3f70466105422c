package utils

import (
	"net/http"

	"hampr/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	if id, ok := r.Context().Value(globals.UserIDKey).(string); ok {
		return id
	}
	return ""
}
