package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPGateway confirms payments against an external payment provider.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type completeRequest struct {
	PurchaseID string `json:"purchaseId"`
	Reference  string `json:"reference"`
}

// CompletePurchase reports the payment to the provider. Any response outside
// 2xx counts as a refusal.
func (g *HTTPGateway) CompletePurchase(ctx context.Context, purchaseID uuid.UUID, paymentReference string) error {
	body, err := json.Marshal(completeRequest{
		PurchaseID: purchaseID.String(),
		Reference:  paymentReference,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments/complete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}
	return nil
}

// StaticGateway accepts every payment. Used when no provider is configured,
// for local development.
type StaticGateway struct{}

func NewStaticGateway() *StaticGateway {
	return &StaticGateway{}
}

func (g *StaticGateway) CompletePurchase(ctx context.Context, purchaseID uuid.UUID, paymentReference string) error {
	_ = ctx
	_ = purchaseID
	_ = paymentReference
	return nil
}
