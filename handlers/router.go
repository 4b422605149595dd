package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"pulsechat/middleware"
	"pulsechat/models"
)

// Router wires every route. Everything except signup and login sits behind
// the guard; the admin console additionally requires capabilities.
func (h *Handler) Router(guard *middleware.Guard) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/signup", h.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.Logout).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(guard.Authenticate)

	api.HandleFunc("/auth/me", h.Me).Methods("GET")
	api.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	api.HandleFunc("/users/search", h.SearchUsers).Methods("GET")

	api.HandleFunc("/chats", h.ListChats).Methods("GET")
	api.HandleFunc("/chats", h.CreateChat).Methods("POST")
	api.HandleFunc("/chats/{id}", h.DeleteChat).Methods("DELETE")
	api.HandleFunc("/chats/{id}/messages", h.GetMessages).Methods("GET")
	api.HandleFunc("/chats/{id}/messages", h.SendMessage).Methods("POST")
	api.HandleFunc("/messages/{id}", h.DeleteMessage).Methods("DELETE")

	api.HandleFunc("/stories", h.ListStories).Methods("GET")
	api.HandleFunc("/stories", h.CreateStory).Methods("POST")
	api.HandleFunc("/stories/{id}", h.DeleteStory).Methods("DELETE")
	api.HandleFunc("/stories/{id}/like", h.LikeStory).Methods("POST")
	api.HandleFunc("/stories/{id}/like", h.UnlikeStory).Methods("DELETE")
	api.HandleFunc("/stories/{id}/comments", h.ListComments).Methods("GET")
	api.HandleFunc("/stories/{id}/comments", h.CreateComment).Methods("POST")
	api.HandleFunc("/comments/{id}", h.DeleteComment).Methods("DELETE")
	api.HandleFunc("/comments/{id}/like", h.LikeComment).Methods("POST")
	api.HandleFunc("/comments/{id}/like", h.UnlikeComment).Methods("DELETE")

	api.HandleFunc("/contacts", h.ListContacts).Methods("GET")
	api.HandleFunc("/contacts", h.AddContact).Methods("POST")
	api.HandleFunc("/contacts/{id}/accept", h.AcceptContact).Methods("POST")
	api.HandleFunc("/contacts/{id}", h.DeleteContact).Methods("DELETE")

	api.HandleFunc("/calls", h.CallHistory).Methods("GET")
	api.HandleFunc("/calls", h.RecordCall).Methods("POST")
	api.HandleFunc("/calls/invite", h.InviteCall).Methods("POST")

	api.HandleFunc("/support/tickets", h.MyTickets).Methods("GET")
	api.HandleFunc("/support/tickets", h.CreateTicket).Methods("POST")

	api.HandleFunc("/ws", h.WebSocket).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()

	users := admin.NewRoute().Subrouter()
	users.Use(guard.RequireCapability(models.CapManageUsers))
	users.HandleFunc("/users", h.AdminListUsers).Methods("GET")
	users.HandleFunc("/users", h.AdminCreateUser).Methods("POST")
	users.HandleFunc("/users/{id}/role", h.AdminSetRole).Methods("PUT")
	users.HandleFunc("/users/{id}/disabled", h.AdminSetDisabled).Methods("PUT")
	users.HandleFunc("/users/{id}/password", h.AdminResetPassword).Methods("PUT")
	users.HandleFunc("/users/{id}", h.AdminDeleteUser).Methods("DELETE")

	reports := admin.NewRoute().Subrouter()
	reports.Use(guard.RequireCapability(models.CapViewReports))
	reports.HandleFunc("/report", h.AdminReport).Methods("GET")

	stories := admin.NewRoute().Subrouter()
	stories.Use(guard.RequireCapability(models.CapManageStories))
	stories.HandleFunc("/stories/{id}", h.AdminDeleteStory).Methods("DELETE")

	chats := admin.NewRoute().Subrouter()
	chats.Use(guard.RequireCapability(models.CapManageChats))
	chats.HandleFunc("/chats/{id}", h.AdminDeleteChat).Methods("DELETE")

	support := admin.NewRoute().Subrouter()
	support.Use(guard.RequireCapability(models.CapManageSupport))
	support.HandleFunc("/tickets", h.AdminListTickets).Methods("GET")
	support.HandleFunc("/tickets/{id}/status", h.AdminUpdateTicketStatus).Methods("PUT")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	return r
}
