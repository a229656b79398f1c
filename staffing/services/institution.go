package services

import (
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

type InstitutionService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *InstitutionService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	// Listing is read-only and open to any authenticated account, pending
	// included.
	r.Get("/", s.List)

	r.With(auth.RequireCapability(auth.CapManageInstitutions)).Post("/", s.Create)

	return r
}

type createInstitutionRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type InstitutionInfo struct {
	Id      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email,omitempty"`
}

func convertToInstitutionInfo(institution *schema.Institution) InstitutionInfo {
	return InstitutionInfo{
		Id:      institution.Id,
		Name:    institution.Name,
		Address: institution.Address,
		Phone:   institution.Phone,
		Email:   institution.Email,
	}
}

func (s *InstitutionService) Create(w http.ResponseWriter, r *http.Request) {
	var params createInstitutionRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Name == "" {
		http.Error(w, "institution name must be specified", http.StatusBadRequest)
		return
	}

	institution := schema.Institution{
		Id:        uuid.New(),
		Name:      params.Name,
		Address:   params.Address,
		Phone:     params.Phone,
		Email:     params.Email,
		CreatedAt: time.Now().UTC(),
	}

	result := s.db.Create(&institution)
	if result.Error != nil {
		slog.Error("sql error creating institution", "error", result.Error)
		http.Error(w, fmt.Sprintf("error creating institution: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	slog.Info("created institution", "institution_id", institution.Id, "name", institution.Name)

	utils.WriteJsonResponse(w, convertToInstitutionInfo(&institution))
}

func (s *InstitutionService) List(w http.ResponseWriter, r *http.Request) {
	var institutions []schema.Institution
	result := s.db.Order("name").Find(&institutions)
	if result.Error != nil {
		slog.Error("sql error listing institutions", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing institutions: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]InstitutionInfo, 0, len(institutions))
	for _, institution := range institutions {
		infos = append(infos, convertToInstitutionInfo(&institution))
	}
	utils.WriteJsonResponse(w, infos)
}
