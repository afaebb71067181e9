package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/deppfellow/listings-api/internal/config"
	"github.com/deppfellow/listings-api/internal/errs"
	"github.com/deppfellow/listings-api/internal/middleware"
	"github.com/deppfellow/listings-api/internal/model"
	"github.com/deppfellow/listings-api/internal/server"
	"github.com/deppfellow/listings-api/internal/service"
	"github.com/deppfellow/listings-api/internal/storeerr"
	"github.com/deppfellow/listings-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	msgListingNotFound  = "Listing not found"
	msgNotFoundOrNoop   = "Listing not found or no changes made"
	msgListingUpdated   = "Listing updated successfully"
	msgListingDeleted   = "Listing deleted successfully"
	msgUnableToAdd      = "Unable to add listing"
	msgUnableToList     = "Unable to retrieve listings"
	msgUnableToRetrieve = "Unable to retrieve listing"
	msgUnableToUpdate   = "Unable to update listing"
	msgUnableToDelete   = "Unable to delete listing"
)

// MessageResponse is the body of every non-listing success response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListingHandler serves /api/listings.
type ListingHandler struct {
	Handler
	listings *service.ListingService
}

func NewListingHandler(s *server.Server, listings *service.ListingService) *ListingHandler {
	return &ListingHandler{
		Handler:  NewHandler(s),
		listings: listings,
	}
}

// --- requests ---------------------------------------------------------------

// CreateListingRequest carries the new listing's fields.
type CreateListingRequest struct {
	Fields model.Fields
}

func (r *CreateListingRequest) Bind(c echo.Context) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	r.Fields = fields
	return nil
}

// Validate accepts any field set; listing bodies are schema-less.
func (r *CreateListingRequest) Validate() error {
	return nil
}

// GetListingsRequest selects a page window and an optional name filter.
type GetListingsRequest struct {
	Page    int `validate:"min=1"`
	PerPage int `validate:"min=1"`
	Name    string

	pagination config.PaginationConfig
}

// Bind reads page, perPage and name. Missing, non-numeric or non-positive
// numbers fall back to the configured defaults instead of failing.
func (r *GetListingsRequest) Bind(c echo.Context) error {
	r.Page = positiveOr(c.QueryParam("page"), r.pagination.DefaultPage)
	r.PerPage = positiveOr(c.QueryParam("perPage"), r.pagination.DefaultPerPage)
	if limit := r.pagination.MaxPerPage; limit > 0 && r.PerPage > limit {
		r.PerPage = limit
	}
	r.Name = c.QueryParam("name")
	return nil
}

func (r *GetListingsRequest) Validate() error {
	return validation.Struct(r)
}

// ListingIDRequest addresses one listing by path id.
type ListingIDRequest struct {
	ID string `validate:"required"`
}

func (r *ListingIDRequest) Bind(c echo.Context) error {
	r.ID = c.Param("id")
	return nil
}

func (r *ListingIDRequest) Validate() error {
	return validation.Struct(r)
}

// UpdateListingRequest carries the fields to overwrite on one listing.
type UpdateListingRequest struct {
	ID     string `validate:"required"`
	Fields model.Fields
}

func (r *UpdateListingRequest) Bind(c echo.Context) error {
	r.ID = c.Param("id")
	fields, err := readFields(c)
	if err != nil {
		return err
	}
	r.Fields = fields
	return nil
}

func (r *UpdateListingRequest) Validate() error {
	return validation.Struct(r)
}

func readFields(c echo.Context) (model.Fields, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, errs.NewBadRequestError("Unable to read request body", err)
	}
	fields, err := model.ParseFields(body)
	if err != nil {
		return nil, errs.NewBadRequestError("Request body must be a JSON object", err)
	}
	return fields, nil
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// --- handlers ---------------------------------------------------------------

func (h *ListingHandler) newGetListingsRequest() *GetListingsRequest {
	return &GetListingsRequest{pagination: h.server.Config.Pagination}
}

func newCreateListingRequest() *CreateListingRequest { return &CreateListingRequest{} }
func newListingIDRequest() *ListingIDRequest         { return &ListingIDRequest{} }
func newUpdateListingRequest() *UpdateListingRequest { return &UpdateListingRequest{} }

// CreateListing handles POST /api/listings.
func (h *ListingHandler) CreateListing(c echo.Context, req *CreateListingRequest) (model.Listing, error) {
	middleware.GetLogger(c).Info().
		Interface("listing", req.Fields).
		Msg("received data for new listing")

	listing, err := h.listings.Create(c.Request().Context(), req.Fields)
	if err != nil {
		return nil, storeerr.HandleError(msgUnableToAdd, err)
	}
	return listing, nil
}

// GetListings handles GET /api/listings.
func (h *ListingHandler) GetListings(c echo.Context, req *GetListingsRequest) ([]model.Listing, error) {
	listings, err := h.listings.List(c.Request().Context(), req.Page, req.PerPage, req.Name)
	if err != nil {
		return nil, storeerr.HandleError(msgUnableToList, err)
	}
	return listings, nil
}

// GetListing handles GET /api/listings/:id.
func (h *ListingHandler) GetListing(c echo.Context, req *ListingIDRequest) (model.Listing, error) {
	listing, err := h.listings.Get(c.Request().Context(), req.ID)
	if errors.Is(err, service.ErrListingNotFound) {
		return nil, errs.NewNotFoundError(msgListingNotFound)
	}
	if err != nil {
		return nil, storeerr.HandleError(msgUnableToRetrieve, err)
	}
	return listing, nil
}

// UpdateListing handles PUT /api/listings/:id. A missing id and a write
// that changes nothing are reported the same way.
func (h *ListingHandler) UpdateListing(c echo.Context, req *UpdateListingRequest) (MessageResponse, error) {
	modified, err := h.listings.Update(c.Request().Context(), req.Fields, req.ID)
	if err != nil {
		return MessageResponse{}, storeerr.HandleError(msgUnableToUpdate, err)
	}
	if !modified {
		return MessageResponse{}, errs.NewNotFoundError(msgNotFoundOrNoop)
	}
	return MessageResponse{Message: msgListingUpdated}, nil
}

// DeleteListing handles DELETE /api/listings/:id.
func (h *ListingHandler) DeleteListing(c echo.Context, req *ListingIDRequest) (MessageResponse, error) {
	deleted, err := h.listings.Delete(c.Request().Context(), req.ID)
	if err != nil {
		return MessageResponse{}, storeerr.HandleError(msgUnableToDelete, err)
	}
	if !deleted {
		return MessageResponse{}, errs.NewNotFoundError(msgListingNotFound)
	}
	return MessageResponse{Message: msgListingDeleted}, nil
}

// RegisterRoutes mounts the listing endpoints on g.
func (h *ListingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", Handle(h.Handler, h.CreateListing, http.StatusCreated, newCreateListingRequest))
	g.GET("", Handle(h.Handler, h.GetListings, http.StatusOK, h.newGetListingsRequest))
	g.GET("/:id", Handle(h.Handler, h.GetListing, http.StatusOK, newListingIDRequest))
	g.PUT("/:id", Handle(h.Handler, h.UpdateListing, http.StatusOK, newUpdateListingRequest))
	g.DELETE("/:id", Handle(h.Handler, h.DeleteListing, http.StatusOK, newListingIDRequest))
}
