package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"ridebook/internal/config"
)

const (
	initiatePath   = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"
)

// SSLCommerzClient talks to the SSLCommerz hosted checkout API.
type SSLCommerzClient struct {
	cfg    config.GatewayConfig
	http   *http.Client
	logger *logrus.Logger
}

// NewSSLCommerzClient creates a gateway client from configuration.
func NewSSLCommerzClient(cfg config.GatewayConfig, logger *logrus.Logger) *SSLCommerzClient {
	return &SSLCommerzClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger,
	}
}

var _ Client = (*SSLCommerzClient)(nil)

type initPayload struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// Init opens a hosted checkout session.
func (c *SSLCommerzClient) Init(ctx context.Context, req InitRequest) (*InitResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.cfg.StoreID)
	form.Set("store_passwd", c.cfg.StorePass)
	form.Set("tran_id", req.TransactionID)
	form.Set("total_amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	form.Set("currency", req.Currency)
	form.Set("success_url", c.cfg.SuccessURL)
	form.Set("fail_url", c.cfg.FailURL)
	form.Set("cancel_url", c.cfg.CancelURL)
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "transport")
	form.Set("product_profile", "general")
	form.Set("shipping_method", "NO")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", "N/A")
	form.Set("cus_city", "N/A")
	form.Set("cus_country", "Bangladesh")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+initiatePath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(fmt.Errorf("init returned status %d", resp.StatusCode))
	}

	var payload initPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, unavailable(fmt.Errorf("decode init response: %v", err))
	}

	if payload.Status != "SUCCESS" || payload.GatewayPageURL == "" {
		c.logger.WithFields(logrus.Fields{
			"tran_id": req.TransactionID,
			"status":  payload.Status,
			"reason":  payload.FailedReason,
		}).Warn("gateway rejected payment session")
		return nil, fmt.Errorf("%w: %s", ErrInitRejected, payload.FailedReason)
	}

	return &InitResponse{
		RedirectURL: payload.GatewayPageURL,
		SessionKey:  payload.SessionKey,
	}, nil
}

type validationPayload struct {
	Status        string `json:"status"`
	TransactionID string `json:"tran_id"`
	Amount        string `json:"amount"`
}

// Validate fetches the authoritative transaction record by validation id.
func (c *SSLCommerzClient) Validate(ctx context.Context, valID string) (*ValidationResult, error) {
	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.cfg.StoreID)
	q.Set("store_passwd", c.cfg.StorePass)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+validationPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(fmt.Errorf("validation returned status %d", resp.StatusCode))
	}

	var payload validationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, unavailable(fmt.Errorf("decode validation response: %v", err))
	}

	amount, _ := strconv.ParseFloat(payload.Amount, 64)
	return &ValidationResult{
		Status:        payload.Status,
		TransactionID: payload.TransactionID,
		Amount:        amount,
		Raw:           json.RawMessage(body),
	}, nil
}
