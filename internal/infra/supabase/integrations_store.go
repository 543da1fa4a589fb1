package supabase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/infra/resilience"
)

// ============================================================
// Integrations store — implements port.IntegrationStore
// ============================================================

// GetIntegration returns the per-gabinete integration row, or nil when the
// gabinete never configured one. Absence is not an error: the caller turns
// it into a "connect your Google account" reply.
func (c *Client) GetIntegration(ctx context.Context, gabineteID string) (*domain.Integration, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetIntegration")
	defer span.End()

	var row *domain.Integration

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf(
				"ia_integrations?select=gabinete_id,google_enabled,google_access_token&gabinete_id=eq.%s&limit=1",
				gabineteID,
			)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			row, err = decodeSingle[domain.Integration](body)
			return err
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/ia_integrations", Err: err}
	}
	return row, nil
}
