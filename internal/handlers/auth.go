package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kdiawara/sika/auth"
	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/models"
)

// AuthHandler issues bearer tokens for back-office operators. Standard JWT
// access tokens; nothing novel lives here.
type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

type credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Register: POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "email and password required", "validation_failed")
		return
	}
	var existing models.User
	if err := h.DB.Where("email = ?", in.Email).First(&existing).Error; err == nil {
		httpx.JSONError(w, http.StatusConflict, "email already registered", "conflict")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusInternalServerError, "could not check email", "internal_error")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not hash password", "internal_error")
		return
	}
	user := models.User{Email: in.Email, Password: string(hash), Firstname: in.Firstname, Lastname: in.Lastname}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not create user", "internal_error")
		return
	}
	token, err := auth.IssueToken(user.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not issue token", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusCreated, "user registered", map[string]any{"token": token})
}

// Login: POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", strings.TrimSpace(in.Email)).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid email or password", "unauthorized")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid email or password", "unauthorized")
		return
	}
	token, err := auth.IssueToken(user.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not issue token", "internal_error")
		return
	}
	httpx.JSON(w, http.StatusOK, "login successful", map[string]any{"token": token})
}
