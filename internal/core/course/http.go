// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package course

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	requestutil "github.com/dothanhvu/lurnia/internal/platform/request"
	"github.com/dothanhvu/lurnia/internal/platform/respond"
	"github.com/dothanhvu/lurnia/internal/platform/validate"
	"github.com/dothanhvu/lurnia/internal/users/auth"
	"github.com/dothanhvu/lurnia/pkg/pagination"
)

type Handler struct {
	service   *Service
	gate      func(http.Handler) http.Handler
	adminOnly func(http.Handler) http.Handler
}

// NewHandler constructs the course handler. The gate and adminOnly
// middlewares are prebuilt by the composition root.
func NewHandler(service *Service, gate, adminOnly func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, gate: gate, adminOnly: adminOnly}
}

// RegisterRoutes mounts the course endpoints on the versioned API router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public catalog
	router.Get("/courses", handler.listCourses)
	router.Get("/courses/{id}", handler.getCourse)

	// Admin only
	router.With(handler.gate, handler.adminOnly).Post("/create-course", handler.createCourse)
}

type createCourseRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	EstimatedPrice *float64 `json:"estimated_price"`
	Tags           []string `json:"tags"`
	Level          string   `json:"level"`
	DemoURL        *string  `json:"demo_url"`
	Benefits       []string `json:"benefits"`
	Prerequisites  []string `json:"prerequisites"`
	Thumbnail      string   `json:"thumbnail"` // base64 image, data-URL prefix allowed
}

func (handler *Handler) listCourses(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
		Level: request.URL.Query().Get("level"),
	}

	courses, total, err := handler.service.ListCourses(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, courses, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getCourse(writer http.ResponseWriter, request *http.Request) {
	courseID := requestutil.ID(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", courseID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	foundCourse, err := handler.service.GetCourse(request.Context(), courseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, foundCourse)
}

func (handler *Handler) createCourse(writer http.ResponseWriter, request *http.Request) {
	principal, ok := auth.PrincipalFromContext(request.Context())
	if !ok {
		respond.Error(writer, request, auth.ErrMissingCredential)
		return
	}

	var input createCourseRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	thumbnail, err := decodeThumbnail(input.Thumbnail)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateCourse(request.Context(), principal.ID, CreateInput{
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Tags:           input.Tags,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
		Benefits:       input.Benefits,
		Prerequisites:  input.Prerequisites,
		Thumbnail:      thumbnail,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// decodeThumbnail turns an optional base64 upload into raw bytes.
func decodeThumbnail(thumbnail string) ([]byte, error) {
	if strings.TrimSpace(thumbnail) == "" {
		return nil, nil
	}

	if index := strings.Index(thumbnail, ","); index != -1 && strings.HasPrefix(thumbnail, "data:") {
		thumbnail = thumbnail[index+1:]
	}

	data, err := base64.StdEncoding.DecodeString(thumbnail)
	if err != nil {
		return nil, apperr.ValidationError("Thumbnail must be base64-encoded image data")
	}

	return data, nil
}
