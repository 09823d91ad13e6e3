package web

import (
	"net/http"
	"strings"

	"github.com/D0mbrowski/Site-Camping/internal/auth"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "templates/login.html", tmplData{Title: "Entrar"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	id, err := s.Auth.Authenticate(r.Context(), username, password)
	if err != nil {
		s.render(w, http.StatusUnauthorized, "templates/login.html", tmplData{Title: "Entrar", Flash: "Usuário ou senha inválidos"})
		return
	}
	if err := s.Auth.SetSession(w, r, id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/requests", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	list, err := s.Requests.List(r.Context(), 100)
	if err != nil {
		s.Logger.Error("list booking requests failed", "error", err)
		http.Error(w, "failed to load requests", http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, "templates/requests.html", tmplData{
		Title:    "Pedidos de reserva",
		User:     uid,
		Requests: list,
	})
}
