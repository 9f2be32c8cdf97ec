package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"beautyhub-backend/internal/model"
	"beautyhub-backend/internal/repository"
	ws "beautyhub-backend/internal/websocket"
	"beautyhub-backend/pkg/apperror"
	"beautyhub-backend/pkg/id"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateVendorRequestDTO struct {
	BusinessName string   `json:"business_name" binding:"required"`
	Description  string   `json:"description"`
	OwnerName    string   `json:"owner_name" binding:"required"`
	OwnerEmail   string   `json:"owner_email" binding:"required,email"`
	Phone        string   `json:"phone"`
	AddressLine  string   `json:"address_line"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
	Country      string   `json:"country"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Draft        bool     `json:"draft"` // park as draft instead of submitting right away
}

type UpdateVendorRequestDTO struct {
	BusinessName string   `json:"business_name"`
	Description  string   `json:"description"`
	OwnerName    string   `json:"owner_name"`
	OwnerEmail   string   `json:"owner_email"`
	Phone        string   `json:"phone"`
	AddressLine  string   `json:"address_line"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
	Country      string   `json:"country"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type VendorRequestFilter struct {
	Status string // draft, pending, approved, rejected or empty for all
	Page   int
	Limit  int
}

type RejectVendorRequestDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type ApproveVendorRequestDTO struct {
	Notes string `json:"notes"`
}

type CompleteRegistrationDTO struct {
	Token    string `json:"token" binding:"required"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

type VendorRequestResponse struct {
	ID              string   `json:"id"`
	BusinessName    string   `json:"business_name"`
	Description     string   `json:"description"`
	OwnerName       string   `json:"owner_name"`
	OwnerEmail      string   `json:"owner_email"`
	Phone           string   `json:"phone"`
	AddressLine     string   `json:"address_line"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	PostalCode      string   `json:"postal_code"`
	Country         string   `json:"country"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Status          string   `json:"status"`
	SubmittedBy     *string  `json:"submitted_by"`
	SubmitterName   string   `json:"submitter_name"`
	SubmittedAt     *string  `json:"submitted_at"`
	ReviewedBy      *string  `json:"reviewed_by"`
	ReviewerName    string   `json:"reviewer_name"`
	ReviewedAt      *string  `json:"reviewed_at"`
	RejectionReason string   `json:"rejection_reason"`
	SalonID         *string  `json:"salon_id"`
	CreatedAt       string   `json:"created_at"`
}

// ReviewOutcome is what a decided review returns: the updated request plus
// the created salon (approve only) and the email log entry for the
// notification leg, nil when even logging the send failed.
type ReviewOutcome struct {
	Request        VendorRequestResponse `json:"request"`
	SalonID        *string               `json:"salon_id,omitempty"`
	NotificationID *string               `json:"notification_id,omitempty"`
}

type RegistrationResult struct {
	UserID   string `json:"user_id"`
	SalonID  string `json:"salon_id"`
	Username string `json:"username"`
}

// --- Interface ---

type ApprovalService interface {
	Create(ctx context.Context, actorID string, req CreateVendorRequestDTO) (VendorRequestResponse, error)
	Update(ctx context.Context, requestID, actorID, actorRole string, req UpdateVendorRequestDTO) (VendorRequestResponse, error)
	Submit(ctx context.Context, requestID, actorID, actorRole string) (VendorRequestResponse, error)
	Get(ctx context.Context, requestID, actorID, actorRole string) (VendorRequestResponse, error)
	List(ctx context.Context, filter VendorRequestFilter, actorID, actorRole string) ([]VendorRequestResponse, int64, error)
	Approve(ctx context.Context, requestID, reviewerID, notes string) (ReviewOutcome, error)
	Reject(ctx context.Context, requestID, reviewerID, reason string) (ReviewOutcome, error)
	CompleteRegistration(ctx context.Context, req CompleteRegistrationDTO) (RegistrationResult, error)
}

type approvalService struct {
	txManager       repository.TransactionManager
	vendorRepo      repository.VendorRequestRepository
	salonRepo       repository.SalonRepository
	tokenRepo       repository.RegistrationTokenRepository
	userRepo        repository.UserRepository
	auditRepo       repository.AuditRepository
	notifier        NotificationService
	hub             *ws.Hub
	logger          *zap.Logger
	frontendBaseURL string
	tokenTTL        time.Duration
}

func NewApprovalService(
	txManager repository.TransactionManager,
	vendorRepo repository.VendorRequestRepository,
	salonRepo repository.SalonRepository,
	tokenRepo repository.RegistrationTokenRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	notifier NotificationService,
	hub *ws.Hub,
	logger *zap.Logger,
	frontendBaseURL string,
	tokenTTL time.Duration,
) ApprovalService {
	return &approvalService{
		txManager:       txManager,
		vendorRepo:      vendorRepo,
		salonRepo:       salonRepo,
		tokenRepo:       tokenRepo,
		userRepo:        userRepo,
		auditRepo:       auditRepo,
		notifier:        notifier,
		hub:             hub,
		logger:          logger,
		frontendBaseURL: frontendBaseURL,
		tokenTTL:        tokenTTL,
	}
}

// --- Implementation ---

func (s *approvalService) Create(ctx context.Context, actorID string, req CreateVendorRequestDTO) (VendorRequestResponse, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return VendorRequestResponse{}, err
	}

	submitterID, err := uuid.Parse(actorID)
	if err != nil {
		return VendorRequestResponse{}, apperror.NewValidation("actor id", "must be a valid UUID")
	}

	request := model.VendorRequest{
		BusinessName: req.BusinessName,
		Description:  req.Description,
		OwnerName:    req.OwnerName,
		OwnerEmail:   req.OwnerEmail,
		Phone:        req.Phone,
		AddressLine:  req.AddressLine,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Latitude:     toNullDecimal(req.Latitude),
		Longitude:    toNullDecimal(req.Longitude),
		SubmittedBy:  &submitterID,
	}
	if req.Draft {
		request.Status = model.VendorStatusDraft
	} else {
		now := time.Now()
		request.Status = model.VendorStatusPending
		request.SubmittedAt = &now
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.vendorRepo.Create(txCtx, &request); createErr != nil {
			return apperror.NewPersistence("create vendor request", createErr)
		}
		return s.audit(txCtx, &submitterID, model.ActionCreateVendorRequest, request.ID.String(), request.BusinessName, map[string]interface{}{
			"status": request.Status,
			"city":   request.City,
		})
	})
	if err != nil {
		return VendorRequestResponse{}, err
	}

	return s.reload(ctx, request.ID)
}

func (s *approvalService) Update(ctx context.Context, requestID, actorID, actorRole string, req UpdateVendorRequestDTO) (VendorRequestResponse, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return VendorRequestResponse{}, apperror.NewValidation("id", "must be a valid UUID")
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return VendorRequestResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.vendorRepo.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOrPersistence("load vendor request", findErr)
		}
		if request.Status != model.VendorStatusDraft {
			return apperror.NewStateConflict("vendor request", request.Status)
		}
		if !canEditRequest(request, actorID, actorRole) {
			return apperror.ErrForbidden
		}

		applyRequestUpdate(request, req)

		if saveErr := s.vendorRepo.Update(txCtx, request); saveErr != nil {
			return apperror.NewPersistence("update vendor request", saveErr)
		}

		actorUUID, _ := uuid.Parse(actorID)
		return s.audit(txCtx, &actorUUID, model.ActionUpdateVendorRequest, request.ID.String(), request.BusinessName, nil)
	})
	if err != nil {
		return VendorRequestResponse{}, err
	}

	return s.reload(ctx, reqID)
}

// Submit moves a draft into the review queue. Drafts are the only state that
// can be submitted; everything else reports its current state.
func (s *approvalService) Submit(ctx context.Context, requestID, actorID, actorRole string) (VendorRequestResponse, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return VendorRequestResponse{}, apperror.NewValidation("id", "must be a valid UUID")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.vendorRepo.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOrPersistence("load vendor request", findErr)
		}
		if request.Status != model.VendorStatusDraft {
			return apperror.NewStateConflict("vendor request", request.Status)
		}
		if !canEditRequest(request, actorID, actorRole) {
			return apperror.ErrForbidden
		}

		now := time.Now()
		request.Status = model.VendorStatusPending
		request.SubmittedAt = &now

		if saveErr := s.vendorRepo.Update(txCtx, request); saveErr != nil {
			return apperror.NewPersistence("submit vendor request", saveErr)
		}

		actorUUID, _ := uuid.Parse(actorID)
		return s.audit(txCtx, &actorUUID, model.ActionSubmitVendorRequest, request.ID.String(), request.BusinessName, nil)
	})
	if err != nil {
		return VendorRequestResponse{}, err
	}

	return s.reload(ctx, reqID)
}

func (s *approvalService) Get(ctx context.Context, requestID, actorID, actorRole string) (VendorRequestResponse, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return VendorRequestResponse{}, apperror.NewValidation("id", "must be a valid UUID")
	}

	request, err := s.vendorRepo.FindByIDWithRelations(ctx, reqID)
	if err != nil {
		return VendorRequestResponse{}, notFoundOrPersistence("load vendor request", err)
	}

	if actorRole != model.RoleAdmin && !isSubmitter(request, actorID) {
		return VendorRequestResponse{}, apperror.ErrForbidden
	}

	return toVendorRequestResponse(*request), nil
}

// List scopes results by role: admins see the whole queue, relationship
// managers only the requests they filed.
func (s *approvalService) List(ctx context.Context, filter VendorRequestFilter, actorID, actorRole string) ([]VendorRequestResponse, int64, error) {
	var (
		requests []model.VendorRequest
		total    int64
		err      error
	)

	if actorRole == model.RoleAdmin {
		requests, total, err = s.vendorRepo.List(ctx, filter.Status, filter.Page, filter.Limit)
	} else {
		submitterID, parseErr := uuid.Parse(actorID)
		if parseErr != nil {
			return nil, 0, apperror.NewValidation("actor id", "must be a valid UUID")
		}
		requests, total, err = s.vendorRepo.ListBySubmitter(ctx, submitterID, filter.Page, filter.Limit)
	}
	if err != nil {
		return nil, 0, apperror.NewPersistence("list vendor requests", err)
	}

	result := make([]VendorRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toVendorRequestResponse(r))
	}
	return result, total, nil
}

// Approve decides a pending request. The salon creation, the request status
// flip, the registration token and the audit row commit as one transaction;
// the approval email goes out only after that commit and cannot roll it back.
func (s *approvalService) Approve(ctx context.Context, requestID, reviewerID, notes string) (ReviewOutcome, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return ReviewOutcome{}, apperror.NewValidation("id", "must be a valid UUID")
	}
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return ReviewOutcome{}, apperror.NewValidation("reviewer id", "must be a valid UUID")
	}

	var (
		request    *model.VendorRequest
		salonID    uuid.UUID
		tokenValue string
		expiresAt  time.Time
	)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		request, findErr = s.vendorRepo.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOrPersistence("load vendor request", findErr)
		}
		if request.Status != model.VendorStatusPending {
			return apperror.NewStateConflict("vendor request", request.Status)
		}

		now := time.Now()

		salon := model.Salon{
			Name:        request.BusinessName,
			Description: request.Description,
			Status:      model.VendorStatusApproved,
			SubmittedBy: request.SubmittedBy,
			ReviewedBy:  &reviewerUUID,
			SubmittedAt: request.SubmittedAt,
			ReviewedAt:  &now,
			Email:       request.OwnerEmail,
			Phone:       request.Phone,
			AddressLine: request.AddressLine,
			City:        request.City,
			State:       request.State,
			PostalCode:  request.PostalCode,
			Country:     request.Country,
			Latitude:    request.Latitude,
			Longitude:   request.Longitude,
		}
		if createErr := s.salonRepo.Create(txCtx, &salon); createErr != nil {
			return apperror.NewPersistence("create salon", createErr)
		}
		salonID = salon.ID

		request.Status = model.VendorStatusApproved
		request.ReviewedBy = &reviewerUUID
		request.ReviewedAt = &now
		request.SalonID = &salon.ID
		if saveErr := s.vendorRepo.Update(txCtx, request); saveErr != nil {
			return apperror.NewPersistence("update vendor request", saveErr)
		}

		tokenValue = id.NewToken()
		expiresAt = now.Add(s.tokenTTL)
		token := model.RegistrationToken{
			SalonID:   salon.ID,
			Email:     request.OwnerEmail,
			Token:     tokenValue,
			ExpiresAt: expiresAt,
		}
		if tokenErr := s.tokenRepo.Create(txCtx, &token); tokenErr != nil {
			return apperror.NewPersistence("create registration token", tokenErr)
		}

		if auditErr := s.audit(txCtx, &reviewerUUID, model.ActionApproveVendorRequest, request.ID.String(), request.BusinessName, map[string]interface{}{
			"salon_id": salon.ID.String(),
			"notes":    notes,
		}); auditErr != nil {
			return auditErr
		}
		return s.audit(txCtx, &reviewerUUID, model.ActionCreateSalon, salon.ID.String(), salon.Name, map[string]interface{}{
			"vendor_request_id": request.ID.String(),
		})
	})
	if err != nil {
		return ReviewOutcome{}, err
	}

	// Post-commit side effects. Best-effort from here on: the approval stands
	// even if the email or the broadcast never make it out.
	notificationID := s.notifier.Send(ctx, model.EmailTypeVendorApproval, request.OwnerEmail,
		"Your salon has been approved",
		map[string]interface{}{
			"BusinessName":    request.BusinessName,
			"OwnerName":       request.OwnerName,
			"RegistrationURL": s.frontendBaseURL + "/register?token=" + tokenValue,
			"ExpiresAt":       expiresAt.Format("January 2, 2006"),
		},
		&RelatedEntity{Type: model.EntityVendorRequest, ID: request.ID},
	)

	s.broadcast("vendor_request.approved", map[string]interface{}{
		"request_id": request.ID.String(),
		"salon_id":   salonID.String(),
		"name":       request.BusinessName,
	})

	response, err := s.reload(ctx, reqID)
	if err != nil {
		return ReviewOutcome{}, err
	}

	salonIDStr := salonID.String()
	return ReviewOutcome{
		Request:        response,
		SalonID:        &salonIDStr,
		NotificationID: uuidToString(notificationID),
	}, nil
}

// Reject closes a pending request with a mandatory reason. The rejection
// email goes to the agent who filed the request, not the vendor.
func (s *approvalService) Reject(ctx context.Context, requestID, reviewerID, reason string) (ReviewOutcome, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return ReviewOutcome{}, apperror.NewValidation("id", "must be a valid UUID")
	}
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return ReviewOutcome{}, apperror.NewValidation("reviewer id", "must be a valid UUID")
	}
	if strings.TrimSpace(reason) == "" {
		return ReviewOutcome{}, apperror.NewValidation("reason", "is required")
	}

	var request *model.VendorRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		request, findErr = s.vendorRepo.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOrPersistence("load vendor request", findErr)
		}
		if request.Status != model.VendorStatusPending {
			return apperror.NewStateConflict("vendor request", request.Status)
		}

		now := time.Now()
		request.Status = model.VendorStatusRejected
		request.ReviewedBy = &reviewerUUID
		request.ReviewedAt = &now
		request.RejectionReason = reason

		if saveErr := s.vendorRepo.Update(txCtx, request); saveErr != nil {
			return apperror.NewPersistence("update vendor request", saveErr)
		}

		return s.audit(txCtx, &reviewerUUID, model.ActionRejectVendorRequest, request.ID.String(), request.BusinessName, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return ReviewOutcome{}, err
	}

	var notificationID *uuid.UUID
	if submitter := s.submitterFor(ctx, request); submitter != nil {
		notificationID = s.notifier.Send(ctx, model.EmailTypeVendorRejection, submitter.Email,
			"Vendor request rejected: "+request.BusinessName,
			map[string]interface{}{
				"BusinessName":  request.BusinessName,
				"SubmitterName": submitter.Username,
				"Reason":        reason,
			},
			&RelatedEntity{Type: model.EntityVendorRequest, ID: request.ID},
		)
	} else {
		s.logger.Warn("rejection has no reachable submitter, skipping email",
			zap.String("request_id", request.ID.String()))
	}

	s.broadcast("vendor_request.rejected", map[string]interface{}{
		"request_id": request.ID.String(),
		"name":       request.BusinessName,
	})

	response, err := s.reload(ctx, reqID)
	if err != nil {
		return ReviewOutcome{}, err
	}

	return ReviewOutcome{
		Request:        response,
		NotificationID: uuidToString(notificationID),
	}, nil
}

// CompleteRegistration redeems an approval token: it creates the owner
// account, links it to the salon, and burns the token, all in one
// transaction. The welcome email follows after commit.
func (s *approvalService) CompleteRegistration(ctx context.Context, req CompleteRegistrationDTO) (RegistrationResult, error) {
	var (
		user    model.User
		salonID uuid.UUID
		email   string
	)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		token, findErr := s.tokenRepo.FindByToken(txCtx, req.Token)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return apperror.NewPersistence("load registration token", findErr)
		}
		if token.UsedAt != nil {
			return apperror.NewStateConflict("registration token", "used")
		}
		if time.Now().After(token.ExpiresAt) {
			return apperror.NewStateConflict("registration token", "expired")
		}
		if token.Salon == nil {
			return apperror.NewPersistence("load registration token", errors.New("token has no salon"))
		}
		if token.Salon.OwnerID != nil {
			return apperror.NewStateConflict("salon", "claimed")
		}

		if _, lookupErr := s.userRepo.GetByUsername(txCtx, req.Username); lookupErr == nil {
			return apperror.NewValidation("username", "already taken")
		} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return apperror.NewPersistence("check username", lookupErr)
		}
		if _, lookupErr := s.userRepo.GetByEmail(txCtx, token.Email); lookupErr == nil {
			return apperror.NewValidation("email", "already registered")
		} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return apperror.NewPersistence("check email", lookupErr)
		}

		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return apperror.NewPersistence("hash password", hashErr)
		}

		user = model.User{
			Username: req.Username,
			Email:    token.Email,
			Phone:    req.Phone,
			Password: string(hashed),
			Role:     model.RoleSalonOwner,
		}
		if createErr := s.userRepo.Create(txCtx, &user); createErr != nil {
			return apperror.NewPersistence("create owner account", createErr)
		}

		salon := token.Salon
		salon.OwnerID = &user.ID
		if saveErr := s.salonRepo.Update(txCtx, salon); saveErr != nil {
			return apperror.NewPersistence("link salon owner", saveErr)
		}
		salonID = salon.ID
		email = token.Email

		now := time.Now()
		if usedErr := s.tokenRepo.MarkUsed(txCtx, token.ID, now); usedErr != nil {
			return apperror.NewPersistence("mark token used", usedErr)
		}

		return s.audit(txCtx, &user.ID, model.ActionClaimSalon, salon.ID.String(), salon.Name, map[string]interface{}{
			"token_id": token.ID.String(),
		})
	})
	if err != nil {
		return RegistrationResult{}, err
	}

	s.notifier.Send(ctx, model.EmailTypeWelcome, email,
		"Welcome to BeautyHub",
		map[string]interface{}{
			"Username": user.Username,
			"LoginURL": s.frontendBaseURL + "/login",
		},
		&RelatedEntity{Type: model.EntitySalon, ID: salonID},
	)

	return RegistrationResult{
		UserID:   user.ID.String(),
		SalonID:  salonID.String(),
		Username: user.Username,
	}, nil
}

// --- helpers ---

func (s *approvalService) reload(ctx context.Context, id uuid.UUID) (VendorRequestResponse, error) {
	request, err := s.vendorRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return VendorRequestResponse{}, apperror.NewPersistence("reload vendor request", err)
	}
	return toVendorRequestResponse(*request), nil
}

func (s *approvalService) audit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload := ""
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return apperror.NewPersistence("write audit log", err)
	}
	return nil
}

func (s *approvalService) submitterFor(ctx context.Context, request *model.VendorRequest) *model.User {
	if request.SubmittedBy == nil {
		return nil
	}
	submitter, err := s.userRepo.GetByID(ctx, request.SubmittedBy.String())
	if err != nil {
		return nil
	}
	return submitter
}

func (s *approvalService) broadcast(event string, payload map[string]interface{}) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- msg
}

func canEditRequest(request *model.VendorRequest, actorID, actorRole string) bool {
	return actorRole == model.RoleAdmin || isSubmitter(request, actorID)
}

func isSubmitter(request *model.VendorRequest, actorID string) bool {
	return request.SubmittedBy != nil && request.SubmittedBy.String() == actorID
}

func applyRequestUpdate(request *model.VendorRequest, req UpdateVendorRequestDTO) {
	if req.BusinessName != "" {
		request.BusinessName = req.BusinessName
	}
	if req.Description != "" {
		request.Description = req.Description
	}
	if req.OwnerName != "" {
		request.OwnerName = req.OwnerName
	}
	if req.OwnerEmail != "" {
		request.OwnerEmail = req.OwnerEmail
	}
	if req.Phone != "" {
		request.Phone = req.Phone
	}
	if req.AddressLine != "" {
		request.AddressLine = req.AddressLine
	}
	if req.City != "" {
		request.City = req.City
	}
	if req.State != "" {
		request.State = req.State
	}
	if req.PostalCode != "" {
		request.PostalCode = req.PostalCode
	}
	if req.Country != "" {
		request.Country = req.Country
	}
	if req.Latitude != nil {
		request.Latitude = toNullDecimal(req.Latitude)
	}
	if req.Longitude != nil {
		request.Longitude = toNullDecimal(req.Longitude)
	}
}

func validateCoordinates(lat, lon *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return apperror.NewValidation("latitude", "must be between -90 and 90")
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return apperror.NewValidation("longitude", "must be between -180 and 180")
	}
	return nil
}

func notFoundOrPersistence(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return apperror.NewPersistence(op, err)
}

func toNullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*f), Valid: true}
}

func nullDecimalToFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return &f
}

func uuidToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toVendorRequestResponse(r model.VendorRequest) VendorRequestResponse {
	resp := VendorRequestResponse{
		ID:              r.ID.String(),
		BusinessName:    r.BusinessName,
		Description:     r.Description,
		OwnerName:       r.OwnerName,
		OwnerEmail:      r.OwnerEmail,
		Phone:           r.Phone,
		AddressLine:     r.AddressLine,
		City:            r.City,
		State:           r.State,
		PostalCode:      r.PostalCode,
		Country:         r.Country,
		Latitude:        nullDecimalToFloat(r.Latitude),
		Longitude:       nullDecimalToFloat(r.Longitude),
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}

	if r.SubmittedBy != nil {
		submittedBy := r.SubmittedBy.String()
		resp.SubmittedBy = &submittedBy
	}
	if r.Submitter != nil {
		resp.SubmitterName = r.Submitter.Username
	}
	if r.SubmittedAt != nil {
		submittedAt := r.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &submittedAt
	}
	if r.ReviewedBy != nil {
		reviewedBy := r.ReviewedBy.String()
		resp.ReviewedBy = &reviewedBy
	}
	if r.Reviewer != nil {
		resp.ReviewerName = r.Reviewer.Username
	}
	if r.ReviewedAt != nil {
		reviewedAt := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewedAt
	}
	if r.SalonID != nil {
		salonID := r.SalonID.String()
		resp.SalonID = &salonID
	}

	return resp
}
