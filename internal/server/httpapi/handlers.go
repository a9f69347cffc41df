// Package httpapi exposes the user service over a JSON HTTP API. It
// maps request payloads to service calls and domain errors to the
// response envelope {"error": message} with the error's carried code.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/apetrovs/databoard/internal/common"
	"github.com/apetrovs/databoard/internal/logging"
	"github.com/apetrovs/databoard/internal/server/pagination"
	"github.com/apetrovs/databoard/internal/server/users"
	"github.com/apetrovs/databoard/internal/server/validation"
)

// appHandler is a handler that returns an error instead of writing the
// error response itself; makeHandler translates the error.
type appHandler func(w http.ResponseWriter, r *http.Request) error

func (s *Server) makeHandler(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var appErr *common.Error
		if errors.As(err, &appErr) && appErr.Code < 500 {
			s.logger.Warn(r.Context(), "request rejected",
				"code", appErr.Code, "reason", appErr.Message, "path", r.URL.Path, "method", r.Method)
			respondWithJSON(w, appErr.Code, map[string]string{"error": appErr.Message})
			return
		}

		s.logger.Error(r.Context(), "request failed",
			"path", r.URL.Path, "method", r.Method, "error", err.Error())
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": common.ErrInternal.Message})
	}
}

// bearerToken returns the credential from the Authorization header. The
// token is opaque to this layer; an absent header yields "" and the
// token gate decides what that means.
func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	return strings.TrimPrefix(token, "Bearer ")
}

// --- wire types ---

type addressPayload struct {
	ID           int64  `json:"id,omitempty"`
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	StreetNumber int    `json:"streetNumber"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type userPayload struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	BirthDate string           `json:"birthDate"`
	Addresses []addressPayload `json:"addresses,omitempty"`
}

type createUserRequest struct {
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	BirthDate string           `json:"birthDate"`
	Addresses []addressPayload `json:"addresses"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

type usersResponse struct {
	Users    []userPayload       `json:"users"`
	Count    int                 `json:"count"`
	PageInfo pagination.PageInfo `json:"pageInfo"`
}

func toUserPayload(u *users.User) userPayload {
	p := userPayload{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		BirthDate: validation.FormatBirthDate(u.BirthDate),
	}
	for _, a := range u.Addresses {
		p.Addresses = append(p.Addresses, addressPayload{
			ID:           a.ID,
			CEP:          a.CEP,
			Street:       a.Street,
			StreetNumber: a.StreetNumber,
			Complement:   a.Complement,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
		})
	}
	return p
}

// --- handlers ---

type UserHandler struct {
	service *users.Service
	logger  logging.Logger
}

func NewUserHandler(service *users.Service, logger logging.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger.With("module", "httpapi")}
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &common.Error{Code: 400, Message: "invalid request payload"}
	}
	defer r.Body.Close()

	in := users.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: req.BirthDate,
	}
	for _, a := range req.Addresses {
		in.Addresses = append(in.Addresses, users.AddressInput{
			CEP:          a.CEP,
			Street:       a.Street,
			StreetNumber: a.StreetNumber,
			Complement:   a.Complement,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
		})
	}

	user, err := h.service.Register(r.Context(), bearerToken(r), in)
	if err != nil {
		return err
	}

	h.logger.Info(r.Context(), "user registered", "id", user.ID)
	respondWithJSON(w, http.StatusCreated, toUserPayload(user))
	return nil
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &common.Error{Code: 400, Message: "invalid request payload"}
	}
	defer r.Body.Close()

	result, err := h.service.Login(r.Context(), users.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		return err
	}

	h.logger.Info(r.Context(), "user logged in", "id", result.User.ID)
	respondWithJSON(w, http.StatusOK, loginResponse{
		User:  toUserPayload(result.User),
		Token: result.Token,
	})
	return nil
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return &common.Error{Code: 400, Message: "invalid user id"}
	}

	user, err := h.service.GetUser(r.Context(), bearerToken(r), id)
	if err != nil {
		return err
	}

	respondWithJSON(w, http.StatusOK, toUserPayload(user))
	return nil
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) error {
	in := users.ListInput{}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return &common.Error{Code: 400, Message: "invalid offset"}
		}
		in.Offset = &n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return &common.Error{Code: 400, Message: "invalid limit"}
		}
		in.Limit = &n
	}

	page, err := h.service.ListUsers(r.Context(), bearerToken(r), in)
	if err != nil {
		return err
	}

	resp := usersResponse{
		Users:    []userPayload{},
		Count:    page.Count,
		PageInfo: page.PageInfo,
	}
	for i := range page.Users {
		resp.Users = append(resp.Users, toUserPayload(&page.Users[i]))
	}

	respondWithJSON(w, http.StatusOK, resp)
	return nil
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
