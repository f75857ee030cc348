package handler

import (
	"strconv"
	"time"

	"land-ledger/internal/adapter/http/dto"
	"land-ledger/internal/adapter/http/middleware"
	"land-ledger/internal/core/domain"
	"land-ledger/internal/core/ports"
	"land-ledger/pkg/apperror"
	"land-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LandHandler handles parcel endpoints.
type LandHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLandHandler creates a new LandHandler.
func NewLandHandler(ledgerSvc ports.LedgerService) *LandHandler {
	return &LandHandler{ledgerSvc: ledgerSvc}
}

// Register handles POST /api/v1/lands.
func (h *LandHandler) Register(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RegisterLandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	parcel, err := h.ledgerSvc.RegisterLand(c.Request.Context(), ports.RegisterLandRequest{
		Caller:   caller,
		Location: req.Location,
		Area:     req.Area,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toParcelResponse(parcel))
}

// ListForSale handles POST /api/v1/lands/:id/list.
func (h *LandHandler) ListForSale(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := parseParcelID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ListForSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	parcel, err := h.ledgerSvc.ListForSale(c.Request.Context(), ports.ListForSaleRequest{
		Caller:   caller,
		ParcelID: id,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toParcelResponse(parcel))
}

// Purchase handles POST /api/v1/lands/:id/purchase.
func (h *LandHandler) Purchase(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := parseParcelID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.PurchaseLandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	parcel, err := h.ledgerSvc.PurchaseLand(c.Request.Context(), ports.PurchaseLandRequest{
		Caller:     caller,
		ParcelID:   id,
		AmountPaid: req.AmountPaid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toParcelResponse(parcel))
}

// Transfer handles POST /api/v1/lands/:id/transfer.
func (h *LandHandler) Transfer(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := parseParcelID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	parcel, err := h.ledgerSvc.TransferOwnership(c.Request.Context(), ports.TransferOwnershipRequest{
		Caller:   caller,
		ParcelID: id,
		NewOwner: domain.NormalizeAddress(req.NewOwner),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toParcelResponse(parcel))
}

// GetAll handles GET /api/v1/lands.
func (h *LandHandler) GetAll(c *gin.Context) {
	parcels, err := h.ledgerSvc.GetAllLands(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ParcelResponse, 0, len(parcels))
	for i := range parcels {
		items = append(items, toParcelResponse(&parcels[i]))
	}
	response.OK(c, dto.ParcelListResponse{Items: items, Total: len(items)})
}

// Get handles GET /api/v1/lands/:id.
func (h *LandHandler) Get(c *gin.Context) {
	id, err := parseParcelID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	parcel, err := h.ledgerSvc.GetLand(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toParcelResponse(parcel))
}

// History handles GET /api/v1/lands/:id/history.
func (h *LandHandler) History(c *gin.Context) {
	id, err := parseParcelID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.ledgerSvc.GetHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.HistoryResponse{ParcelID: id, Entries: make([]dto.SettlementEntryResponse, 0, len(entries))}
	for i := range entries {
		resp.Entries = append(resp.Entries, toSettlementEntryResponse(&entries[i]))
	}
	response.OK(c, resp)
}

// callerAddress fetches the authenticated caller from the request context.
func callerAddress(c *gin.Context) (domain.Address, bool) {
	v, ok := c.Get(middleware.CtxCallerAddress)
	if !ok {
		return "", false
	}
	addr, ok := v.(domain.Address)
	return addr, ok
}

// parseParcelID parses the :id path parameter.
func parseParcelID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ErrInvalidArgument("parcel id must be a positive integer")
	}
	return id, nil
}

// toParcelResponse converts domain.Parcel to DTO.
func toParcelResponse(p *domain.Parcel) dto.ParcelResponse {
	return dto.ParcelResponse{
		ID:        p.ID,
		Owner:     string(p.Owner),
		Location:  p.Location,
		Area:      p.Area,
		Price:     p.Price,
		ForSale:   p.ForSale,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

// toSettlementEntryResponse converts domain.SettlementEntry to DTO.
func toSettlementEntryResponse(e *domain.SettlementEntry) dto.SettlementEntryResponse {
	resp := dto.SettlementEntryResponse{
		Seq:       e.Seq,
		Kind:      string(e.Kind),
		ParcelID:  e.ParcelID,
		Actor:     string(e.Actor),
		Outcome:   string(e.Outcome),
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.Counterpart != nil {
		s := string(*e.Counterpart)
		resp.Counterpart = &s
	}
	if e.Amount != nil {
		a := *e.Amount
		resp.Amount = &a
	}
	return resp
}
