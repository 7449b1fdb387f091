package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/kyat/internal/http/respond"
	"github.com/MrJamesThe3rd/kyat/internal/session"
	"github.com/MrJamesThe3rd/kyat/internal/user"
)

const (
	msgSignedUp  = "Account တင်ပြီးပါပြီ! Login ပြန်ဝင်ပါ"
	msgLoggedIn  = "Login ဝင်ပြီးပါပြီ"
	msgLoggedOut = "Logout ထွက်ပြီးပါပြီ"
)

type Handler struct {
	users    *user.Service
	sessions *session.Manager
}

func NewHandler(users *user.Service, sessions *session.Manager) *Handler {
	return &Handler{users: users, sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Period   string `json:"period"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	u, err := h.users.SignUp(r.Context(), req.Username, req.Password, req.Confirm)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("user signed up", "user_id", u.ID, "username", u.Username)

	respond.Message(w, http.StatusCreated, msgSignedUp)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	st, err := h.sessions.Issue(w, u.ID, u.Username)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, sessionResponse{
		Message:  msgLoggedIn,
		Username: st.Username,
		Period:   st.Cursor.Period.String(),
	})
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Clear(w)
	respond.Message(w, http.StatusOK, msgLoggedOut)
}
