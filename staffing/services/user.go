package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sanacare/staffing/auth"
	"sanacare/staffing/schema"
	"sanacare/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

// AuthRoutes carries the unauthenticated entrypoints plus /me.
func (s *UserService) AuthRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", s.Signup)
	r.Get("/login", s.LoginWithEmail)

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Get("/me", s.Me)
	})

	return r
}

func (s *UserService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/list", s.List)
	r.Get("/{user_id}", s.Info)
	r.Patch("/{user_id}", s.UpdateProfile)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCapability(auth.CapManageUsers))

		r.Post("/create", s.CreateUser)
		r.Patch("/{user_id}/status", s.SetStatus)
	})

	return r
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
}

type signupResponse struct {
	UserId uuid.UUID `json:"user_id"`
}

func (s *UserService) Signup(w http.ResponseWriter, r *http.Request) {
	var params signupRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Email == "" || params.Password == "" || params.FirstName == "" || params.LastName == "" {
		http.Error(w, "first_name, last_name, email, and password must be specified", http.StatusBadRequest)
		return
	}

	// Admin accounts are seeded from config or created by an admin, never
	// self-registered.
	if err := schema.CheckValidCaregiverRole(params.Role); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	userId, err := s.userAuth.CreateUser(auth.NewUserArgs{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Password:  params.Password,
		Role:      params.Role,
		Phone:     params.Phone,
	}, schema.UserPending)
	if err != nil {
		responseCode := http.StatusInternalServerError
		if errors.Is(err, auth.ErrEmailAlreadyInUse) {
			responseCode = http.StatusConflict
		}
		http.Error(w, err.Error(), responseCode)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		return notifyAdmins(txn, schema.NotifyNewUser, fmt.Sprintf("Nouvelle inscription: %v %v", params.FirstName, params.LastName))
	})
	if err != nil {
		slog.Error("error notifying admins of new signup", "user_id", userId, "error", err)
	}

	utils.WriteJsonResponse(w, signupResponse{UserId: userId})
}

type loginResponse struct {
	UserId      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"access_token"`
}

func (s *UserService) LoginWithEmail(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
		return
	}

	login, err := s.userAuth.LoginWithEmail(email, password)
	if err != nil {
		responseCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, auth.ErrUserNotFoundWithEmail):
			responseCode = http.StatusNotFound
		case errors.Is(err, auth.ErrInvalidCredentials):
			responseCode = http.StatusUnauthorized
		case errors.Is(err, auth.ErrAccountRejected):
			responseCode = http.StatusForbidden
		}
		http.Error(w, fmt.Sprintf("login failed: %v", err), responseCode)
		return
	}

	utils.WriteJsonResponse(w, loginResponse{UserId: login.UserId, AccessToken: login.AccessToken})
}

type UserInfo struct {
	Id        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Phone     string    `json:"phone,omitempty"`
	Photo     string    `json:"photo,omitempty"`
}

func convertToUserInfo(user *schema.User) UserInfo {
	return UserInfo{
		Id:        user.Id,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		Phone:     user.Phone,
		Photo:     user.Photo,
	}
}

type meResponse struct {
	UserInfo
	TokenExpiration time.Time `json:"token_expiration"`
}

func (s *UserService) Me(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	expiration, err := s.userAuth.GetTokenExpiration(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, meResponse{UserInfo: convertToUserInfo(&user), TokenExpiration: expiration})
}

func (s *UserService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var users []schema.User
	var result *gorm.DB
	if auth.HasCapability(user, auth.CapViewAllRecords) {
		result = s.db.Find(&users)
	} else {
		result = s.db.Where("status = ?", schema.UserApproved).Where("id <> ?", user.Id).Find(&users)
	}

	if result.Error != nil {
		slog.Error("sql error listing users", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing users: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, convertToUserInfo(&u))
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *UserService) Info(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParamUUID(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := schema.GetUser(userId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("error getting user info: %v", err), http.StatusInternalServerError)
		return
	}

	info := convertToUserInfo(&user)
	utils.WriteJsonResponse(w, info)
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Photo     *string `json:"photo"`
}

// UpdateProfile lets users edit their own display fields. Email, role, and
// status are immutable here; status changes go through SetStatus.
func (s *UserService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParamUUID(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if caller.Id != userId {
		http.Error(w, "users may only update their own profile", http.StatusForbidden)
		return
	}

	var params updateProfileRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	updates := map[string]interface{}{}
	if params.FirstName != nil {
		updates["first_name"] = *params.FirstName
	}
	if params.LastName != nil {
		updates["last_name"] = *params.LastName
	}
	if params.Phone != nil {
		updates["phone"] = *params.Phone
	}
	if params.Photo != nil {
		updates["photo"] = *params.Photo
	}

	if len(updates) == 0 {
		http.Error(w, "no updatable fields specified", http.StatusBadRequest)
		return
	}

	result := s.db.Model(&schema.User{Id: userId}).Updates(updates)
	if result.Error != nil {
		slog.Error("sql error updating user profile", "user_id", userId, "error", result.Error)
		http.Error(w, fmt.Sprintf("error updating profile: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w)
}

type createUserRequest struct {
	signupRequest
}

func (s *UserService) CreateUser(w http.ResponseWriter, r *http.Request) {
	var params createUserRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Email == "" || params.Password == "" || params.FirstName == "" || params.LastName == "" {
		http.Error(w, "first_name, last_name, email, and password must be specified", http.StatusBadRequest)
		return
	}

	if err := schema.CheckValidRole(params.Role); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	userId, err := s.userAuth.CreateUser(auth.NewUserArgs{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Password:  params.Password,
		Role:      params.Role,
		Phone:     params.Phone,
	}, schema.UserApproved)
	if err != nil {
		responseCode := http.StatusInternalServerError
		if errors.Is(err, auth.ErrEmailAlreadyInUse) {
			responseCode = http.StatusConflict
		}
		http.Error(w, fmt.Sprintf("error creating user: %v", err), responseCode)
		return
	}

	utils.WriteJsonResponse(w, signupResponse{UserId: userId})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *UserService) SetStatus(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParamUUID(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params setStatusRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Status != schema.UserApproved && params.Status != schema.UserRejected {
		http.Error(w, fmt.Sprintf("invalid status '%v', must be '%v' or '%v'", params.Status, schema.UserApproved, schema.UserRejected), http.StatusUnprocessableEntity)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkUserExists(txn, userId); err != nil {
			return err
		}

		// Status is transitioned exactly once, from pending.
		result := txn.Model(&schema.User{}).
			Where("id = ? AND status = ?", userId, schema.UserPending).
			Update("status", params.Status)
		if result.Error != nil {
			slog.Error("sql error updating user status", "user_id", userId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected == 0 {
			return CodedError(fmt.Errorf("user %v is not pending approval", userId), http.StatusConflict)
		}

		return createNotification(txn, userId, schema.NotifyStatusUpdate, fmt.Sprintf("Votre compte a été %v", params.Status))
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating user status: %v", err), GetResponseCode(err))
		return
	}

	slog.Info("updated user status", "user_id", userId, "status", params.Status)

	utils.WriteSuccess(w)
}
