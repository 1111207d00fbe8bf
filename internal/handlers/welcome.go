package handlers

import "net/http"

// WelcomeHandler reports the application name and version at the API root.
type WelcomeHandler struct {
	appName    string
	appVersion string
}

// NewWelcomeHandler creates a WelcomeHandler.
func NewWelcomeHandler(appName, appVersion string) *WelcomeHandler {
	return &WelcomeHandler{
		appName:    appName,
		appVersion: appVersion,
	}
}

func (h *WelcomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, envelope{
		"app_name":    h.appName,
		"app_version": h.appVersion,
	})
}
