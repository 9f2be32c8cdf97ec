package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	"beautyhub-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UpdateSalonRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Email         *string  `json:"email"`
	Phone         *string  `json:"phone"`
	AddressLine   *string  `json:"address_line"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	PostalCode    *string  `json:"postal_code"`
	Country       *string  `json:"country"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	LogoURL       *string  `json:"logo_url"`
	CoverImageURL *string  `json:"cover_image_url"`
}

type SalonFilter struct {
	Status string
	City   string
	Search string
	Page   int
	Limit  int
}

type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

type SearchQuery struct {
	Query     string
	City      string
	MinRating float64
	Limit     int
}

type ServicePayload struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Price           string `json:"price" binding:"required"`
	DurationMinutes int    `json:"duration_minutes"`
}

type UpdateServicePayload struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Price           *string `json:"price"`
	DurationMinutes *int    `json:"duration_minutes"`
	IsActive        *bool   `json:"is_active"`
}

type ReviewPayload struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type ServiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	SalonID         uuid.UUID       `json:"salon_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	IsActive        bool            `json:"is_active"`
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	SalonID   uuid.UUID `json:"salon_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type SalonResponse struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Status        string            `json:"status"`
	OwnerID       *uuid.UUID        `json:"owner_id"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	AddressLine   string            `json:"address_line"`
	City          string            `json:"city"`
	State         string            `json:"state"`
	PostalCode    string            `json:"postal_code"`
	Country       string            `json:"country"`
	Latitude      *float64          `json:"latitude"`
	Longitude     *float64          `json:"longitude"`
	LogoURL       string            `json:"logo_url"`
	CoverImageURL string            `json:"cover_image_url"`
	Rating        float64           `json:"rating"`
	RatingCount   int               `json:"rating_count"`
	Services      []ServiceResponse `json:"services,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type NearbySalonResponse struct {
	SalonResponse
	DistanceKm float64 `json:"distance_km"`
}

type SearchSalonResponse struct {
	SalonResponse
	Relevance int `json:"relevance"`
}

// --- Interface ---

type SalonService interface {
	Get(ctx context.Context, salonID, actorID, actorRole string) (SalonResponse, error)
	List(ctx context.Context, filter SalonFilter, actorRole string) ([]SalonResponse, int64, error)
	ListMine(ctx context.Context, ownerID string) ([]SalonResponse, error)
	Update(ctx context.Context, salonID, actorID, actorRole string, req UpdateSalonRequest) (SalonResponse, error)
	Delete(ctx context.Context, salonID, actorID string) error
	Nearby(ctx context.Context, q NearbyQuery) ([]NearbySalonResponse, error)
	Search(ctx context.Context, q SearchQuery) ([]SearchSalonResponse, error)

	AddService(ctx context.Context, salonID, actorID, actorRole string, req ServicePayload) (ServiceResponse, error)
	UpdateService(ctx context.Context, salonID, serviceID, actorID, actorRole string, req UpdateServicePayload) (ServiceResponse, error)
	RemoveService(ctx context.Context, salonID, serviceID, actorID, actorRole string) error
	ListServices(ctx context.Context, salonID string) ([]ServiceResponse, error)

	AddReview(ctx context.Context, salonID, userID string, req ReviewPayload) (ReviewResponse, error)
	ListReviews(ctx context.Context, salonID string, page, limit int) ([]ReviewResponse, int64, error)
}

type salonService struct {
	salonRepo   repository.SalonRepository
	bookingRepo repository.BookingRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewSalonService(
	salonRepo repository.SalonRepository,
	bookingRepo repository.BookingRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) SalonService {
	return &salonService{
		salonRepo:   salonRepo,
		bookingRepo: bookingRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

// Get hides non-approved salons from everyone except the owner, the agent
// who submitted them, and admins. Hidden means not-found, not forbidden.
func (s *salonService) Get(ctx context.Context, salonID, actorID, actorRole string) (SalonResponse, error) {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return SalonResponse{}, fmt.Errorf("invalid salon ID")
	}

	salon, err := s.salonRepo.FindByID(ctx, sid)
	if err != nil {
		return SalonResponse{}, apperror.ErrNotFound
	}

	if salon.Status != model.VendorStatusApproved && !canSeeHiddenSalon(salon, actorID, actorRole) {
		return SalonResponse{}, apperror.ErrNotFound
	}

	return toSalonResponse(*salon), nil
}

// List is the public directory: non-admins only ever see approved salons,
// whatever status filter they ask for.
func (s *salonService) List(ctx context.Context, filter SalonFilter, actorRole string) ([]SalonResponse, int64, error) {
	status := filter.Status
	if actorRole != model.RoleAdmin {
		status = model.VendorStatusApproved
	}

	salons, total, err := s.salonRepo.List(ctx, status, filter.City, filter.Search, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salons: %w", err)
	}

	result := make([]SalonResponse, 0, len(salons))
	for _, salon := range salons {
		result = append(result, toSalonResponse(salon))
	}
	return result, total, nil
}

func (s *salonService) ListMine(ctx context.Context, ownerID string) ([]SalonResponse, error) {
	oid, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID")
	}

	salons, err := s.salonRepo.FindByOwner(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned salons: %w", err)
	}

	result := make([]SalonResponse, 0, len(salons))
	for _, salon := range salons {
		result = append(result, toSalonResponse(salon))
	}
	return result, nil
}

func (s *salonService) Update(ctx context.Context, salonID, actorID, actorRole string, req UpdateSalonRequest) (SalonResponse, error) {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return SalonResponse{}, fmt.Errorf("invalid salon ID")
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return SalonResponse{}, err
	}

	salon, err := s.salonRepo.FindByID(ctx, sid)
	if err != nil {
		return SalonResponse{}, apperror.ErrNotFound
	}
	if !canManageSalon(salon, actorID, actorRole) {
		return SalonResponse{}, apperror.ErrForbidden
	}

	if req.Name != nil {
		if *req.Name == "" {
			return SalonResponse{}, fmt.Errorf("name cannot be empty")
		}
		salon.Name = *req.Name
	}
	if req.Description != nil {
		salon.Description = *req.Description
	}
	if req.Email != nil && *req.Email != "" {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return SalonResponse{}, fmt.Errorf("invalid email format")
		}
		salon.Email = *req.Email
	}
	if req.Phone != nil {
		salon.Phone = *req.Phone
	}
	if req.AddressLine != nil {
		salon.AddressLine = *req.AddressLine
	}
	if req.City != nil {
		salon.City = *req.City
	}
	if req.State != nil {
		salon.State = *req.State
	}
	if req.PostalCode != nil {
		salon.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		salon.Country = *req.Country
	}
	if req.Latitude != nil {
		salon.Latitude = toNullDecimal(req.Latitude)
	}
	if req.Longitude != nil {
		salon.Longitude = toNullDecimal(req.Longitude)
	}
	if req.LogoURL != nil {
		salon.LogoURL = *req.LogoURL
	}
	if req.CoverImageURL != nil {
		salon.CoverImageURL = *req.CoverImageURL
	}

	actorUUID, _ := uuid.Parse(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.salonRepo.Update(txCtx, salon); saveErr != nil {
			return fmt.Errorf("failed to update salon: %w", saveErr)
		}
		entry := model.AuditLog{
			UserID:     &actorUUID,
			Action:     model.ActionUpdateSalon,
			EntityID:   salon.ID.String(),
			EntityName: salon.Name,
		}
		return s.auditRepo.Log(txCtx, &entry)
	})
	if err != nil {
		return SalonResponse{}, err
	}

	return toSalonResponse(*salon), nil
}

// Delete is a hard delete reserved for admins. Booking history blocks it;
// salons with bookings stay for the audit trail.
func (s *salonService) Delete(ctx context.Context, salonID, actorID string) error {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return fmt.Errorf("invalid salon ID")
	}

	salon, err := s.salonRepo.FindByID(ctx, sid)
	if err != nil {
		return apperror.ErrNotFound
	}

	bookings, err := s.bookingRepo.CountBySalon(ctx, sid)
	if err != nil {
		return fmt.Errorf("failed to check salon bookings: %w", err)
	}
	if bookings > 0 {
		return fmt.Errorf("salon has %d bookings and cannot be deleted", bookings)
	}

	actorUUID, _ := uuid.Parse(actorID)
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.salonRepo.Delete(txCtx, sid); delErr != nil {
			return fmt.Errorf("failed to delete salon: %w", delErr)
		}
		entry := model.AuditLog{
			UserID:     &actorUUID,
			Action:     model.ActionDeleteSalon,
			EntityID:   sid.String(),
			EntityName: salon.Name,
		}
		return s.auditRepo.Log(txCtx, &entry)
	})
}

func (s *salonService) Nearby(ctx context.Context, q NearbyQuery) ([]NearbySalonResponse, error) {
	if q.Latitude < -90 || q.Latitude > 90 {
		return nil, apperror.NewValidation("latitude", "must be between -90 and 90")
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return nil, apperror.NewValidation("longitude", "must be between -180 and 180")
	}
	if q.RadiusKm <= 0 {
		q.RadiusKm = 10
	}
	if q.RadiusKm > 100 {
		q.RadiusKm = 100
	}
	q.Limit = clampResultLimit(q.Limit)

	rows, err := s.salonRepo.Nearby(ctx, q.Latitude, q.Longitude, q.RadiusKm, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("nearby query failed: %w", err)
	}

	result := make([]NearbySalonResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, NearbySalonResponse{
			SalonResponse: toSalonResponse(row.Salon),
			DistanceKm:    row.DistanceKm,
		})
	}
	return result, nil
}

func (s *salonService) Search(ctx context.Context, q SearchQuery) ([]SearchSalonResponse, error) {
	if q.Query == "" {
		return nil, apperror.NewValidation("q", "is required")
	}
	if q.MinRating < 0 || q.MinRating > 5 {
		return nil, apperror.NewValidation("min_rating", "must be between 0 and 5")
	}
	q.Limit = clampResultLimit(q.Limit)

	rows, err := s.salonRepo.Search(ctx, q.Query, q.City, q.MinRating, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	result := make([]SearchSalonResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, SearchSalonResponse{
			SalonResponse: toSalonResponse(row.Salon),
			Relevance:     row.Relevance,
		})
	}
	return result, nil
}

func (s *salonService) AddService(ctx context.Context, salonID, actorID, actorRole string, req ServicePayload) (ServiceResponse, error) {
	salon, err := s.manageableSalon(ctx, salonID, actorID, actorRole)
	if err != nil {
		return ServiceResponse{}, err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return ServiceResponse{}, fmt.Errorf("price must be a non-negative decimal")
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 30
	}

	svc := model.SalonService{
		SalonID:         salon.ID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           price,
		DurationMinutes: duration,
		IsActive:        true,
	}
	if err := s.salonRepo.CreateService(ctx, &svc); err != nil {
		return ServiceResponse{}, fmt.Errorf("failed to create service: %w", err)
	}

	return toServiceResponse(svc), nil
}

func (s *salonService) UpdateService(ctx context.Context, salonID, serviceID, actorID, actorRole string, req UpdateServicePayload) (ServiceResponse, error) {
	salon, err := s.manageableSalon(ctx, salonID, actorID, actorRole)
	if err != nil {
		return ServiceResponse{}, err
	}

	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return ServiceResponse{}, fmt.Errorf("invalid service ID")
	}
	svc, err := s.salonRepo.FindServiceByID(ctx, svcID)
	if err != nil {
		return ServiceResponse{}, apperror.ErrNotFound
	}
	if svc.SalonID != salon.ID {
		return ServiceResponse{}, apperror.ErrNotFound
	}

	if req.Name != nil {
		if *req.Name == "" {
			return ServiceResponse{}, fmt.Errorf("name cannot be empty")
		}
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		price, parseErr := decimal.NewFromString(*req.Price)
		if parseErr != nil || price.IsNegative() {
			return ServiceResponse{}, fmt.Errorf("price must be a non-negative decimal")
		}
		svc.Price = price
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return ServiceResponse{}, fmt.Errorf("duration_minutes must be positive")
		}
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.salonRepo.UpdateService(ctx, svc); err != nil {
		return ServiceResponse{}, fmt.Errorf("failed to update service: %w", err)
	}

	return toServiceResponse(*svc), nil
}

func (s *salonService) RemoveService(ctx context.Context, salonID, serviceID, actorID, actorRole string) error {
	salon, err := s.manageableSalon(ctx, salonID, actorID, actorRole)
	if err != nil {
		return err
	}

	svcID, err := uuid.Parse(serviceID)
	if err != nil {
		return fmt.Errorf("invalid service ID")
	}
	svc, err := s.salonRepo.FindServiceByID(ctx, svcID)
	if err != nil {
		return apperror.ErrNotFound
	}
	if svc.SalonID != salon.ID {
		return apperror.ErrNotFound
	}

	return s.salonRepo.DeleteService(ctx, svcID)
}

func (s *salonService) ListServices(ctx context.Context, salonID string) ([]ServiceResponse, error) {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return nil, fmt.Errorf("invalid salon ID")
	}

	services, err := s.salonRepo.ListServices(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	result := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, toServiceResponse(svc))
	}
	return result, nil
}

// AddReview inserts the review and refreshes the salon's denormalized
// rating in the same transaction.
func (s *salonService) AddReview(ctx context.Context, salonID, userID string, req ReviewPayload) (ReviewResponse, error) {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return ReviewResponse{}, fmt.Errorf("invalid salon ID")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ReviewResponse{}, fmt.Errorf("invalid user ID")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return ReviewResponse{}, apperror.NewValidation("rating", "must be between 1 and 5")
	}

	salon, err := s.salonRepo.FindByID(ctx, sid)
	if err != nil {
		return ReviewResponse{}, apperror.ErrNotFound
	}
	if salon.Status != model.VendorStatusApproved {
		return ReviewResponse{}, apperror.ErrNotFound
	}

	review := model.Review{
		SalonID: sid,
		UserID:  uid,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.salonRepo.CreateReview(txCtx, &review); createErr != nil {
			return fmt.Errorf("failed to create review: %w", createErr)
		}
		return s.salonRepo.RecalculateRating(txCtx, sid)
	})
	if err != nil {
		return ReviewResponse{}, err
	}

	return toReviewResponse(review), nil
}

func (s *salonService) ListReviews(ctx context.Context, salonID string, page, limit int) ([]ReviewResponse, int64, error) {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid salon ID")
	}

	reviews, total, err := s.salonRepo.ListReviews(ctx, sid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	result := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		result = append(result, toReviewResponse(review))
	}
	return result, total, nil
}

// --- helpers ---

func (s *salonService) manageableSalon(ctx context.Context, salonID, actorID, actorRole string) (*model.Salon, error) {
	sid, err := uuid.Parse(salonID)
	if err != nil {
		return nil, fmt.Errorf("invalid salon ID")
	}
	salon, err := s.salonRepo.FindByID(ctx, sid)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if !canManageSalon(salon, actorID, actorRole) {
		return nil, apperror.ErrForbidden
	}
	return salon, nil
}

func canManageSalon(salon *model.Salon, actorID, actorRole string) bool {
	if actorRole == model.RoleAdmin {
		return true
	}
	return salon.OwnerID != nil && salon.OwnerID.String() == actorID
}

func canSeeHiddenSalon(salon *model.Salon, actorID, actorRole string) bool {
	if actorRole == model.RoleAdmin {
		return true
	}
	if salon.OwnerID != nil && salon.OwnerID.String() == actorID {
		return true
	}
	return salon.SubmittedBy != nil && salon.SubmittedBy.String() == actorID
}

func clampResultLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return 50
	}
	return limit
}

func toServiceResponse(svc model.SalonService) ServiceResponse {
	return ServiceResponse{
		ID:              svc.ID,
		SalonID:         svc.SalonID,
		Name:            svc.Name,
		Description:     svc.Description,
		Price:           svc.Price,
		DurationMinutes: svc.DurationMinutes,
		IsActive:        svc.IsActive,
	}
}

func toReviewResponse(review model.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        review.ID,
		SalonID:   review.SalonID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if review.User != nil {
		resp.UserName = review.User.Username
	}
	return resp
}

func toSalonResponse(salon model.Salon) SalonResponse {
	resp := SalonResponse{
		ID:            salon.ID,
		Name:          salon.Name,
		Description:   salon.Description,
		Status:        salon.Status,
		OwnerID:       salon.OwnerID,
		Email:         salon.Email,
		Phone:         salon.Phone,
		AddressLine:   salon.AddressLine,
		City:          salon.City,
		State:         salon.State,
		PostalCode:    salon.PostalCode,
		Country:       salon.Country,
		Latitude:      nullDecimalToFloat(salon.Latitude),
		Longitude:     nullDecimalToFloat(salon.Longitude),
		LogoURL:       salon.LogoURL,
		CoverImageURL: salon.CoverImageURL,
		Rating:        salon.Rating,
		RatingCount:   salon.RatingCount,
		CreatedAt:     salon.CreatedAt,
		UpdatedAt:     salon.UpdatedAt,
	}
	for _, svc := range salon.Services {
		resp.Services = append(resp.Services, toServiceResponse(svc))
	}
	return resp
}
