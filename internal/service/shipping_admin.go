package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// Shipping admin actions.
const (
	ActionCreateZone             = "createZone"
	ActionUpdateZone             = "updateZone"
	ActionDeleteZone             = "deleteZone"
	ActionCreateStateRestriction = "createStateRestriction"
	ActionDeleteStateRestriction = "deleteStateRestriction"
	ActionCreateHeatSurcharge    = "createHeatSurcharge"
	ActionDeleteHeatSurcharge    = "deleteHeatSurcharge"
	ActionCreatePackagingFee     = "createPackagingFee"
	ActionDeletePackagingFee     = "deletePackagingFee"
)

// ShippingAdminRequest is one action against the shipping configuration.
// Only the fields the action uses are read.
type ShippingAdminRequest struct {
	Action string `json:"action"`
	ID     string `json:"id"`

	// Zones
	Name           *string   `json:"name"`
	States         *[]string `json:"states"`
	BasePriceCents *int64    `json:"base_price_cents" validate:"omitempty,gte=0"`
	Currency       *string   `json:"currency" validate:"omitempty,len=3"`
	IsDefault      *bool     `json:"is_default"`

	// State restrictions
	StateCode string  `json:"state_code"`
	Reason    *string `json:"reason"`

	// Heat surcharges and packaging fees
	ZoneID              *string `json:"zone_id"`
	SurchargeCents      int64   `json:"surcharge_cents" validate:"gte=0"`
	AppliesToFrozenOnly *bool   `json:"applies_to_frozen_only"`
	Kind                string  `json:"kind"`
	FeeCents            int64   `json:"fee_cents" validate:"gte=0"`

	// Body is the raw request, recorded as audit details for create and update.
	Body json.RawMessage `json:"-"`
}

// ShippingAdminResult is {"id": ...} for creates and {"ok": true} otherwise.
type ShippingAdminResult struct {
	ID string `json:"id,omitempty"`
	OK bool   `json:"ok,omitempty"`
}

// ShippingAdminService manages zones, restrictions, heat rules and
// packaging fees.
type ShippingAdminService struct {
	store  domain.ShippingConfigStore
	audit  auditor
	logger *slog.Logger
}

// NewShippingAdminService creates a ShippingAdminService.
func NewShippingAdminService(store domain.ShippingConfigStore, audit domain.AuditLogStore, logger *slog.Logger) *ShippingAdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShippingAdminService{
		store:  store,
		audit:  auditor{store: audit, logger: logger},
		logger: logger,
	}
}

// GetConfig returns the full configuration with zones ordered default first.
// Empty collections are returned as empty slices.
func (s *ShippingAdminService) GetConfig(ctx context.Context) (*domain.ShippingConfig, error) {
	cfg, err := s.store.LoadShippingConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Zones == nil {
		cfg.Zones = []domain.ShippingZone{}
	}
	if cfg.StateRestrictions == nil {
		cfg.StateRestrictions = []domain.StateRestriction{}
	}
	if cfg.HeatSurchargeRules == nil {
		cfg.HeatSurchargeRules = []domain.HeatSurchargeRule{}
	}
	if cfg.PackagingFees == nil {
		cfg.PackagingFees = []domain.PackagingFee{}
	}
	return cfg, nil
}

// Apply performs req.Action. The caller must be an admin with write access.
func (s *ShippingAdminService) Apply(ctx context.Context, req ShippingAdminRequest) (*ShippingAdminResult, error) {
	if err := requireWriter(ctx); err != nil {
		return nil, err
	}
	if err := validateStruct("shipping.admin", req); err != nil {
		return nil, err
	}

	switch req.Action {
	case ActionCreateZone:
		id, err := s.store.CreateZone(ctx, domain.ZoneInput{
			Name:           req.Name,
			States:         req.States,
			BasePriceCents: req.BasePriceCents,
			Currency:       req.Currency,
			IsDefault:      req.IsDefault,
		})
		return s.created(ctx, err, req, "shipping_zone", id)

	case ActionUpdateZone:
		if req.ID == "" {
			return nil, ErrIDRequired
		}
		err := s.store.UpdateZone(ctx, req.ID, domain.ZoneInput{
			Name:           req.Name,
			States:         req.States,
			BasePriceCents: req.BasePriceCents,
			Currency:       req.Currency,
			IsDefault:      req.IsDefault,
		})
		if err != nil {
			return nil, err
		}
		s.audit.record(ctx, req.Action, "shipping_zone", req.ID, detailsFromBody(req.Body))
		return &ShippingAdminResult{OK: true}, nil

	case ActionDeleteZone:
		return s.deleted(ctx, req, "shipping_zone", s.store.DeleteZone)

	case ActionCreateStateRestriction:
		code := strings.ToUpper(strings.TrimSpace(req.StateCode))
		if len(code) > 2 {
			code = code[:2]
		}
		if len(code) != 2 {
			return nil, ErrInvalidState
		}
		id, err := s.store.CreateStateRestriction(ctx, code, req.Reason)
		return s.created(ctx, err, req, "state_restriction", id)

	case ActionDeleteStateRestriction:
		return s.deleted(ctx, req, "state_restriction", s.store.DeleteStateRestriction)

	case ActionCreateHeatSurcharge:
		id, err := s.store.CreateHeatSurcharge(ctx, domain.HeatSurchargeInput{
			Name:                req.Name,
			ZoneID:              nonEmpty(req.ZoneID),
			SurchargeCents:      req.SurchargeCents,
			AppliesToFrozenOnly: req.AppliesToFrozenOnly,
		})
		return s.created(ctx, err, req, "heat_surcharge_rule", id)

	case ActionDeleteHeatSurcharge:
		return s.deleted(ctx, req, "heat_surcharge_rule", s.store.DeleteHeatSurcharge)

	case ActionCreatePackagingFee:
		kind := domain.PackagingKind(req.Kind)
		if kind != domain.PackagingIcePack && kind != domain.PackagingInsulated {
			return nil, ErrInvalidKind
		}
		id, err := s.store.CreatePackagingFee(ctx, domain.PackagingFeeInput{
			Kind:     kind,
			ZoneID:   nonEmpty(req.ZoneID),
			FeeCents: req.FeeCents,
		})
		return s.created(ctx, err, req, "packaging_fee", id)

	case ActionDeletePackagingFee:
		return s.deleted(ctx, req, "packaging_fee", s.store.DeletePackagingFee)

	default:
		return nil, ErrUnknownAction
	}
}

func (s *ShippingAdminService) created(ctx context.Context, err error, req ShippingAdminRequest, resourceType, id string) (*ShippingAdminResult, error) {
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, req.Action, resourceType, id, detailsFromBody(req.Body))
	s.logger.Info("shipping config changed", "action", req.Action, "id", id)
	return &ShippingAdminResult{ID: id}, nil
}

func (s *ShippingAdminService) deleted(ctx context.Context, req ShippingAdminRequest, resourceType string, del func(context.Context, string) error) (*ShippingAdminResult, error) {
	if req.ID == "" {
		return nil, ErrIDRequired
	}
	if err := del(ctx, req.ID); err != nil {
		return nil, err
	}
	s.audit.record(ctx, req.Action, resourceType, req.ID, nil)
	s.logger.Info("shipping config changed", "action", req.Action, "id", req.ID)
	return &ShippingAdminResult{OK: true}, nil
}

// nonEmpty maps an empty string to nil.
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
