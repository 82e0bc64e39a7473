// Package register implements the HTTP handler for account registration.
//
// The request carries the credentials, the role and the role-matching
// profile variant; an optional admin code enrolls the account as an
// administrator instead. On success the reply contains the new uid and a
// token pair.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/edilconnect/platform/internal/errs"
	"github.com/edilconnect/platform/internal/http/response"
	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/models"
	auth "github.com/edilconnect/platform/internal/services/auth"
)

// Request carries the registration input.
type Request struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=professional business admin"`
	AdminCode string `json:"admin_code,omitempty"`

	Phone            string `json:"phone,omitempty"`
	PEC              string `json:"pec,omitempty"`
	AlternativeEmail string `json:"alternative_email,omitempty" validate:"omitempty,email"`

	Professional *ProfessionalInfo `json:"professional,omitempty"`
	Business     *BusinessInfo     `json:"business,omitempty"`
}

// ProfessionalInfo is the profile block required for role professional.
type ProfessionalInfo struct {
	Profession            string     `json:"profession" validate:"required"`
	LicenseNumber         string     `json:"license_number,omitempty"`
	ProfessionalOrder     string     `json:"professional_order,omitempty"`
	OrderRegistrationDate *time.Time `json:"order_registration_date,omitempty"`
}

// BusinessInfo is the profile block required for role business.
type BusinessInfo struct {
	CompanyName        string               `json:"company_name" validate:"required"`
	VATNumber          string               `json:"vat_number" validate:"required"`
	BusinessType       string               `json:"business_type,omitempty"`
	RegistrationNumber string               `json:"registration_number,omitempty"`
	LegalAddress       *models.LegalAddress `json:"legal_address,omitempty"`
}

// Service describes the registration business logic.
type Service interface {
	Register(ctx context.Context, params auth.RegisterParams) (string, *models.SessionToken, error)
}

// Handler handles registration HTTP requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New creates a registration Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Register a new account
// @Description Creates an account with a role-matching profile. A valid admin code creates an administrator instead.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Registration data"
// @Success 201 {object} map[string]any "Account created"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 403 {object} response.ErrorResponse "Wrong admin code"
// @Failure 409 {object} response.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, pair, err := h.authService.Register(r.Context(), toParams(req))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidAdminCode):
			log.Error("invalid admin code")
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("invalid admin code"))
		case errors.Is(err, errs.ErrEmailTaken):
			log.Error("email already registered")
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("email already registered"))
		case errors.Is(err, errs.ErrInvalidCredentials):
			log.Error("profile does not match role", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("profile does not match role"))
		default:
			log.Error("registration failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("user registered", slog.String("uid", uid))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":           uid,
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}))
}

func toParams(req Request) auth.RegisterParams {
	params := auth.RegisterParams{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		AdminCode: req.AdminCode,
		ContactInfo: models.ContactInfo{
			Phone:            req.Phone,
			PEC:              req.PEC,
			AlternativeEmail: req.AlternativeEmail,
		},
	}
	if req.Professional != nil {
		params.ProfessionalInfo = &models.ProfessionalInfo{
			Profession:            req.Professional.Profession,
			LicenseNumber:         req.Professional.LicenseNumber,
			ProfessionalOrder:     req.Professional.ProfessionalOrder,
			OrderRegistrationDate: req.Professional.OrderRegistrationDate,
		}
	}
	if req.Business != nil {
		params.BusinessInfo = &models.BusinessInfo{
			CompanyName:        req.Business.CompanyName,
			VATNumber:          req.Business.VATNumber,
			BusinessType:       req.Business.BusinessType,
			RegistrationNumber: req.Business.RegistrationNumber,
			LegalAddress:       req.Business.LegalAddress,
		}
	}
	return params
}
