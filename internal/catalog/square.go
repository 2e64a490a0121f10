package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	square "github.com/square/square-go-sdk"
	squareclient "github.com/square/square-go-sdk/client"
	"github.com/square/square-go-sdk/core"
	"github.com/square/square-go-sdk/option"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

const (
	attrFrozen      = "is_frozen"
	attrProductType = "product_type"
)

// SquareConfig configures a SquareClient.
type SquareConfig struct {
	AccessToken string
	Environment string // "production" or anything else for sandbox
	LocationID  string

	// BaseURL overrides the environment URL (tests).
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// SquareClient implements Provider with the Square Go SDK.
type SquareClient struct {
	sq         *squareclient.Client
	locationID string
	breaker    *gobreaker.CircuitBreaker[any]
	logger     *slog.Logger
}

// NewSquareClient creates a Square client. It fails with ErrNotConfigured
// when the access token or location is missing.
func NewSquareClient(cfg SquareConfig) (*SquareClient, error) {
	if cfg.AccessToken == "" || cfg.LocationID == "" {
		return nil, ErrNotConfigured
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = square.Environments.Sandbox
		if cfg.Environment == "production" {
			baseURL = square.Environments.Production
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "square",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *core.APIError
			if errors.As(err, &apiErr) {
				return !transient(apiErr.StatusCode)
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	// One attempt per call; failures surface to the breaker directly.
	sq := squareclient.NewClient(
		option.WithToken(cfg.AccessToken),
		option.WithBaseURL(strings.TrimRight(baseURL, "/")),
		option.WithHTTPClient(httpClient),
		option.WithMaxAttempts(1),
	)

	return &SquareClient{
		sq:         sq,
		locationID: cfg.LocationID,
		breaker:    breaker,
		logger:     logger,
	}, nil
}

// execute runs one SDK call through the circuit breaker.
func execute[T any](c *SquareClient, call func() (*T, error)) (*T, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return call()
	})
	if err != nil {
		return nil, err
	}
	res, _ := out.(*T)
	return res, nil
}

// transient reports statuses that say nothing about the request itself.
func transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// apiError unwraps an SDK error response. The body of a non-2xx response is
// carried as the wrapped error text.
func apiError(err error) (*core.APIError, []byte, bool) {
	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		return nil, nil, false
	}
	var body []byte
	if inner := apiErr.Unwrap(); inner != nil {
		body = []byte(inner.Error())
	}
	return apiErr, body, true
}

// classify turns an SDK failure into a ProviderError.
func classify(op string, err error) error {
	apiErr, body, ok := apiError(err)
	if !ok {
		return errUnavailable(err)
	}
	var envelope struct {
		Errors []*square.Error `json:"errors"`
	}
	_ = json.Unmarshal(body, &envelope)
	return errStatus(op, apiErr.StatusCode, details(envelope.Errors))
}

func details(errs []*square.Error) []ErrorDetail {
	if len(errs) == 0 {
		return nil
	}
	out := make([]ErrorDetail, 0, len(errs))
	for _, e := range errs {
		if e == nil {
			continue
		}
		out = append(out, ErrorDetail{
			Category: string(e.Category),
			Code:     string(e.Code),
			Detail:   str(e.Detail),
			Field:    str(e.Field),
		})
	}
	return out
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptr[T any](v T) *T { return &v }

func money(cents int64, currency string) *square.Money {
	return &square.Money{Amount: ptr(cents), Currency: ptr(square.Currency(currency))}
}

// ============================================================================
// CATALOG LISTING
// ============================================================================

// ListCatalog walks every page of ITEM objects.
func (c *SquareClient) ListCatalog(ctx context.Context) ([]domain.CatalogLine, error) {
	var lines []domain.CatalogLine
	var cursor *string

	for {
		req := &square.SearchCatalogObjectsRequest{
			ObjectTypes: []square.CatalogObjectType{square.CatalogObjectTypeItem},
			Cursor:      cursor,
		}
		page, err := execute(c, func() (*square.SearchCatalogObjectsResponse, error) {
			return c.sq.Catalog.Search(ctx, req)
		})
		if err != nil {
			return nil, classify("catalog list", err)
		}
		if page == nil {
			return lines, nil
		}

		for _, obj := range page.Objects {
			lines = append(lines, catalogLines(obj)...)
		}

		if str(page.Cursor) == "" {
			return lines, nil
		}
		cursor = page.Cursor
	}
}

// catalogLines flattens an ITEM into one line per priced variation.
func catalogLines(obj *square.CatalogObject) []domain.CatalogLine {
	if obj == nil || obj.Item == nil || obj.Item.ItemData == nil || len(obj.Item.ItemData.Variations) == 0 {
		return nil
	}
	item := obj.Item

	name := str(item.ItemData.Name)
	if name == "" {
		name = "Unnamed"
	}
	description := strings.TrimSpace(str(item.ItemData.Description))
	if description == "" {
		description = strings.TrimSpace(str(item.ItemData.DescriptionPlaintext))
	}
	isFrozen := strings.EqualFold(attribute(item.CustomAttributeValues, attrFrozen), "true")
	productType := domain.ParseProductType(attribute(item.CustomAttributeValues, attrProductType))

	lines := make([]domain.CatalogLine, 0, len(item.ItemData.Variations))
	for _, v := range item.ItemData.Variations {
		if v == nil || v.ItemVariation == nil || v.ItemVariation.ID == "" || v.ItemVariation.ItemVariationData == nil {
			continue
		}
		price := v.ItemVariation.ItemVariationData.PriceMoney
		if price == nil || price.Amount == nil || *price.Amount == 0 {
			continue
		}
		currency := domain.DefaultCurrency
		if price.Currency != nil && *price.Currency != "" {
			currency = string(*price.Currency)
		}
		lines = append(lines, domain.CatalogLine{
			ID:          item.ID,
			VariationID: v.ItemVariation.ID,
			Name:        name,
			Description: description,
			PriceAmount: *price.Amount,
			Currency:    currency,
			IsFrozen:    isFrozen,
			ProductType: productType,
		})
	}
	return lines
}

// attribute finds a custom attribute by map key, key or name.
func attribute(values map[string]*square.CatalogCustomAttributeValue, key string) string {
	if v, found := values[key]; found && v != nil {
		return str(v.StringValue)
	}
	for _, v := range values {
		if v != nil && (str(v.Key) == key || str(v.Name) == key) {
			return str(v.StringValue)
		}
	}
	return ""
}

// ============================================================================
// ORDERS AND PAYMENTS
// ============================================================================

// CreateOrder implements Provider. A rejected order comes back as
// OrderResult.Errors; auth failures and transient statuses are errors.
func (c *SquareClient) CreateOrder(ctx context.Context, in OrderRequest) (*OrderResult, error) {
	order := &square.Order{LocationID: c.locationID}
	for _, l := range in.LineItems {
		line := &square.OrderLineItem{
			UID:             ptr(l.UID),
			Name:            ptr(l.Name),
			Quantity:        strconv.FormatInt(l.Quantity, 10),
			CatalogObjectID: ptr(l.VariationID),
			BasePriceMoney:  money(l.BasePriceCents, l.Currency),
		}
		if l.Note != "" {
			line.Note = ptr(l.Note)
		}
		order.LineItems = append(order.LineItems, line)
	}
	for _, sc := range in.ServiceCharges {
		order.ServiceCharges = append(order.ServiceCharges, &square.OrderServiceCharge{
			UID:              ptr(sc.UID),
			Name:             ptr(sc.Name),
			AmountMoney:      money(sc.AmountCents, sc.Currency),
			CalculationPhase: ptr(square.OrderServiceChargeCalculationPhase(sc.CalculationPhase)),
		})
	}

	req := &square.CreateOrderRequest{
		IdempotencyKey: ptr(in.IdempotencyKey),
		Order:          order,
	}
	resp, err := execute(c, func() (*square.CreateOrderResponse, error) {
		return c.sq.Orders.Create(ctx, req)
	})
	if err != nil {
		apiErr, body, ok := apiError(err)
		if !ok || transient(apiErr.StatusCode) || apiErr.StatusCode == http.StatusUnauthorized {
			return nil, classify("create order", err)
		}
		var rejected square.CreateOrderResponse
		_ = json.Unmarshal(body, &rejected)
		return &OrderResult{Errors: details(rejected.Errors)}, nil
	}

	result := &OrderResult{}
	if resp != nil {
		result.Errors = details(resp.Errors)
		if resp.Order != nil {
			result.OrderID = str(resp.Order.ID)
			if resp.Order.TotalMoney != nil && resp.Order.TotalMoney.Amount != nil {
				result.TotalCents = *resp.Order.TotalMoney.Amount
			}
		}
	}
	return result, nil
}

// declineStatus reports statuses on which Square answers a payment attempt
// with a decision about the card.
func declineStatus(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusPaymentRequired
}

// CreatePayment implements Provider. Card declines arrive as 400/402 and are
// returned as a PaymentResult; any other failure, 429 included, is an error.
func (c *SquareClient) CreatePayment(ctx context.Context, in PaymentRequest) (*PaymentResult, error) {
	req := &square.CreatePaymentRequest{
		SourceID:       in.SourceID,
		IdempotencyKey: in.IdempotencyKey,
		AmountMoney:    money(in.AmountCents, in.Currency),
		OrderID:        ptr(in.OrderID),
		LocationID:     ptr(c.locationID),
	}
	if in.BuyerEmail != "" {
		req.BuyerEmailAddress = ptr(in.BuyerEmail)
	}
	if a := in.ShippingAddress; a != nil {
		req.ShippingAddress = &square.Address{
			FirstName:                    ptr(a.FirstName),
			LastName:                     ptr(a.LastName),
			AddressLine1:                 ptr(a.AddressLine1),
			Locality:                     ptr(a.Locality),
			AdministrativeDistrictLevel1: ptr(a.Region),
			PostalCode:                   ptr(a.PostalCode),
		}
	}

	resp, err := execute(c, func() (*square.CreatePaymentResponse, error) {
		return c.sq.Payments.Create(ctx, req)
	})
	if err != nil {
		apiErr, body, ok := apiError(err)
		if !ok || !declineStatus(apiErr.StatusCode) {
			return nil, classify("create payment", err)
		}
		var declined square.CreatePaymentResponse
		_ = json.Unmarshal(body, &declined)
		resp = &declined
	}

	result := &PaymentResult{}
	if resp != nil {
		result.Errors = details(resp.Errors)
		if resp.Payment != nil {
			result.PaymentID = str(resp.Payment.ID)
			result.Status = str(resp.Payment.Status)
		}
	}
	return result, nil
}

// ============================================================================
// CATALOG ADMIN
// ============================================================================

// CreateItem implements Provider. The item and its variation are present
// only at the configured location.
func (c *SquareClient) CreateItem(ctx context.Context, in ItemInput) (*CreatedItem, error) {
	itemTempID := "#item-" + uuid.NewString()
	varTempID := "#var-" + uuid.NewString()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Unnamed"
	}
	currency := in.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	locations := []string{c.locationID}

	item := &square.CatalogObject{
		Type: "ITEM",
		Item: &square.CatalogObjectItem{
			ID:                    itemTempID,
			PresentAtAllLocations: ptr(false),
			PresentAtLocationIDs:  locations,
			ItemData: &square.CatalogItem{
				Name:        ptr(name),
				Description: ptr(strings.TrimSpace(in.Description)),
				Variations: []*square.CatalogObject{{
					Type: "ITEM_VARIATION",
					ItemVariation: &square.CatalogObjectItemVariation{
						ID:                    varTempID,
						PresentAtAllLocations: ptr(false),
						PresentAtLocationIDs:  locations,
						ItemVariationData: &square.CatalogItemVariation{
							ItemID:      ptr(itemTempID),
							Name:        ptr("Default"),
							PricingType: ptr(square.CatalogPricingTypeFixedPricing),
							PriceMoney:  money(in.PriceCents, currency),
						},
					},
				}},
			},
		},
	}

	req := &square.BatchUpsertCatalogObjectsRequest{
		IdempotencyKey: uuid.NewString(),
		Batches:        []*square.CatalogObjectBatch{{Objects: []*square.CatalogObject{item}}},
	}
	resp, err := execute(c, func() (*square.BatchUpsertCatalogObjectsResponse, error) {
		return c.sq.Catalog.BatchUpsert(ctx, req)
	})
	if err != nil {
		return nil, classify("create item", err)
	}

	created := &CreatedItem{}
	if resp != nil {
		for _, m := range resp.IDMappings {
			if m == nil {
				continue
			}
			switch str(m.ClientObjectID) {
			case itemTempID:
				created.ItemID = str(m.ObjectID)
			case varTempID:
				created.VariationID = str(m.ObjectID)
			}
		}
	}
	if created.ItemID == "" || created.VariationID == "" {
		return nil, ErrItemNotCreated
	}

	c.logger.Info("catalog item created",
		"item_id", created.ItemID,
		"variation_id", created.VariationID,
	)
	return created, nil
}

// DeleteItem implements Provider.
func (c *SquareClient) DeleteItem(ctx context.Context, itemID, variationID string) error {
	ids := []string{itemID}
	if variationID != "" {
		ids = append(ids, variationID)
	}

	req := &square.BatchDeleteCatalogObjectsRequest{ObjectIDs: ids}
	if _, err := execute(c, func() (*square.BatchDeleteCatalogObjectsResponse, error) {
		return c.sq.Catalog.BatchDelete(ctx, req)
	}); err != nil {
		return classify("delete item", err)
	}

	c.logger.Info("catalog item deleted", "item_id", itemID, "variation_id", variationID)
	return nil
}
