package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"unisync-backend/lib/telemetry"
)

// ErrCredentialsNotFound means the auth service has no stored credentials
// for the (user, tenant, institution) triple.
var ErrCredentialsNotFound = errors.New("credentials not found")

// CredentialSource hands out stored login credentials. Storage and
// encryption live in the external auth service; this package only ever
// holds a credential pair in memory for the duration of one job.
type CredentialSource interface {
	GetCredentials(ctx context.Context, userID, tenantID, institutionID string) (username, password string, err error)
}

type authServiceClient struct {
	client *resty.Client
}

// NewAuthServiceClient talks to the external auth service's credential
// endpoint.
func NewAuthServiceClient(baseURL string) CredentialSource {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Second * 15)
	telemetry.InstrumentResty(client, "services/sync/credentials")
	return &authServiceClient{client: client}
}

type credentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *authServiceClient) GetCredentials(ctx context.Context, userID, tenantID, institutionID string) (string, string, error) {
	var body credentialsResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id":        userID,
			"tenant_id":      tenantID,
			"institution_id": institutionID,
		}).
		SetResult(&body).
		Get("/credentials")
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch credentials: %w", err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return "", "", ErrCredentialsNotFound
	}
	if res.IsError() {
		return "", "", fmt.Errorf("auth service returned %s", res.Status())
	}
	return body.Username, body.Password, nil
}
