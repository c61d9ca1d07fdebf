package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

type toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SetToast sets the HX-Trigger response header to show a toast on the client.
// An existing JSON HX-Trigger value keeps its other events; a non-JSON value
// is replaced. A short-lived flash cookie carries the same toast across
// plain redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	t := toast{Message: message, Type: toastType}

	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			events = map[string]any{}
		}
	}
	events["showToast"] = t

	if data, err := json.Marshal(events); err == nil {
		e.Response.Header().Set("HX-Trigger", string(data))
	}

	if cookieVal, err := json.Marshal(t); err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     "flash_toast",
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			HttpOnly: false, // JS needs to read it
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ErrorToast sets an error toast and prevents HTMX from swapping the error text into the DOM.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
