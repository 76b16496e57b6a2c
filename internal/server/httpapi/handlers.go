package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/readykit/readykit/internal/common"
)

// maxBodyBytes caps request bodies; the stored document is a small
// checklist structure, not a file upload.
const maxBodyBytes = 1 << 20

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := s.users.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeError(w, http.StatusBadRequest, "Email, password and name are required")
		case errors.Is(err, common.ErrorAlreadyExists):
			writeError(w, http.StatusConflict, "Email already registered")
		default:
			s.logger.Error(ctx, "signup failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	s.logger.Info(ctx, "account created", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, messageResponse{Success: true, Message: "Account created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, session, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, common.ErrorUnauthorized):
			// same body for unknown email and wrong password
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			s.logger.Error(ctx, "login failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	s.logger.Info(ctx, "login successful", "user_id", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   session.Token,
		User:    userPayload{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := userFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payload, err := s.data.Get(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "get data failed", "user_id", user.ID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{
		Success: true,
		User:    userPayload{ID: user.ID, Email: user.Email, Name: user.Name},
		Data:    payload,
	})
}

func (s *Server) handlePostData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := userFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := s.data.Save(ctx, user.ID, payload); err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeError(w, http.StatusBadRequest, "Invalid JSON")
		default:
			s.logger.Error(ctx, "save data failed", "user_id", user.ID, "error", err.Error())
			writeError(w, http.StatusInternalServerError, "Failed to save data")
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Data saved"})
}

// handleLogout only requires that a token be present, not that it be
// valid: deleting a token that was never issued is still a success.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := s.sessions.Logout(ctx, bearerToken(r))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeError(w, http.StatusBadRequest, "Token is required")
		default:
			s.logger.Error(ctx, "logout failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := userFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.users.DeleteAccount(ctx, user.ID); err != nil {
		s.logger.Error(ctx, "account deletion failed", "user_id", user.ID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info(ctx, "account deleted", "user_id", user.ID)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Account deleted"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
