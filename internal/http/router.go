package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Users         *UserHandler
	Parties       *PartyHandler
	Door          *DoorHandler
	House         *HouseHandler
	Notifications *NotificationHandler
	// Authenticate wraps every route except registration. When nil, routes are served
	// unauthenticated, which only makes sense in tests.
	Authenticate func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		if cfg.Authenticate == nil {
			return h
		}
		wrapped := cfg.Authenticate(h)
		return wrapped.ServeHTTP
	}

	if cfg.Users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Users.Register(w, r)
			case http.MethodGet:
				protect(cfg.Users.List)(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/users/me", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Users.Me(w, r)
		}))
		mux.HandleFunc("/users/me/push-ids", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Users.AddPushID(w, r)
		}))
		mux.HandleFunc("/users/", protect(func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitPath(strings.TrimPrefix(r.URL.Path, "/users/"))
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithUserID(r.Context(), id))
			switch rest {
			case "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Users.Get(w, r)
			case "mute":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Users.SetMuted(w, r)
			case "multi-door":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Users.SetMultiDoorOpen(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Parties != nil {
		mux.HandleFunc("/parties", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Parties.List(w, r)
			case http.MethodPost:
				cfg.Parties.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/parties/", protect(func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitPath(strings.TrimPrefix(r.URL.Path, "/parties/"))
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithPartyID(r.Context(), id))
			switch {
			case rest == "":
				switch r.Method {
				case http.MethodGet:
					cfg.Parties.Get(w, r)
				case http.MethodDelete:
					cfg.Parties.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodDelete)
				}
			case rest == "status":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Parties.UpdateStatus(w, r)
			case rest == "schedule":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Parties.Reschedule(w, r)
			case rest == "attendance":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Parties.UpdateAttendance(w, r)
			case rest == "guests":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Parties.AddGuest(w, r)
			case strings.HasPrefix(rest, "guests/"):
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Parties.RemoveGuest(w, r, strings.TrimPrefix(rest, "guests/"))
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Door != nil {
		mux.HandleFunc("/door/open", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Door.Open(w, r)
		}))
	}

	if cfg.House != nil {
		mux.HandleFunc("/house", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.House.GetState(w, r)
		}))
		mux.HandleFunc("/house/maintenance", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.House.SetMaintenance(w, r)
		}))
		mux.HandleFunc("/house/registration", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.House.SetRegistration(w, r)
		}))
		mux.HandleFunc("/logs", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.House.Logs(w, r)
		}))
	}

	if cfg.Notifications != nil {
		mux.HandleFunc("/notifications", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Notifications.List(w, r)
		}))
		mux.HandleFunc("/notifications/", protect(func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitPath(strings.TrimPrefix(r.URL.Path, "/notifications/"))
			if id == "" || rest != "read" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			r = r.WithContext(ContextWithNotificationID(r.Context(), id))
			cfg.Notifications.MarkRead(w, r)
		}))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitPath separates the leading path segment from the remainder.
func splitPath(path string) (head, rest string) {
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
