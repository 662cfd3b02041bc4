package access

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dailydrop-service/pkg/config"
	"dailydrop-service/pkg/jwtutil"

	"go.uber.org/zap"
)

// Level is a tenant-scoped access level resolved by the authorization service
type Level string

const (
	LevelAdmin    Level = "admin"
	LevelMember   Level = "member"
	LevelNoAccess Level = "no_access"
)

// Identity is a verified user identity extracted from a request token
type Identity struct {
	UserID string
	Email  string
}

// CompanyAccess is the authorization service's answer for one (user, tenant) pair
type CompanyAccess struct {
	HasAccess bool  `json:"has_access"`
	Level     Level `json:"access_level"`
}

type passAccessResponse struct {
	HasAccess bool `json:"has_access"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the external authorization service that resolves tenant
// access levels and paid-content entitlements
type Client struct {
	BaseURL      string
	AccessPassID string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// NewClient creates a new authorization service client
func NewClient(cfg *config.AccessConfig, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:      cfg.BaseURL,
		AccessPassID: cfg.AccessPassID,
		HTTPClient:   &http.Client{Timeout: cfg.RequestTimeout},
		Logger:       logger,
	}
}

// VerifyUserToken extracts a verified identity from a bearer token issued by
// the identity provider. Returns an error for missing or invalid tokens.
func (c *Client) VerifyUserToken(tokenString string) (*Identity, error) {
	claims, err := jwtutil.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// CompanyAccess resolves the caller's access level for one tenant
func (c *Client) CompanyAccess(ctx context.Context, userID, tenantID string) (*CompanyAccess, error) {
	payload := map[string]string{
		"user_id":    userID,
		"company_id": tenantID,
	}

	var result CompanyAccess
	if err := c.post(ctx, "/access/company", payload, &result); err != nil {
		c.Logger.Error("Company access check failed",
			zap.String("user_id", userID),
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return nil, err
	}

	c.Logger.Debug("Company access resolved",
		zap.String("user_id", userID),
		zap.String("tenant_id", tenantID),
		zap.Bool("has_access", result.HasAccess),
		zap.String("level", string(result.Level)))
	return &result, nil
}

// PassAccess reports whether the user holds the paid access pass gating
// member content
func (c *Client) PassAccess(ctx context.Context, userID string) (bool, error) {
	payload := map[string]string{
		"user_id":        userID,
		"access_pass_id": c.AccessPassID,
	}

	var result passAccessResponse
	if err := c.post(ctx, "/access/pass", payload, &result); err != nil {
		c.Logger.Error("Access pass check failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return false, err
	}

	return result.HasAccess, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
			return fmt.Errorf("authorization service returned %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("authorization service error: %s", errResp.Error)
	}

	return json.Unmarshal(respBody, out)
}
