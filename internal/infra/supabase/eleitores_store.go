package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/legisfy/assessor-ia-go/internal/domain"
)

// ============================================================
// Eleitores store — implements port.EleitorStore
// ============================================================

// CreateEleitor inserts one voter row scoped to the given gabinete.
func (c *Client) CreateEleitor(ctx context.Context, gabineteID string, p *domain.EleitorParams) (*domain.Eleitor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateEleitor")
	defer span.End()

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	data := map[string]any{
		"gabinete_id": gabineteID,
		"nome":        strings.TrimSpace(p.Nome),
		"telefone":    nullableString(p.Telefone),
		"endereco":    nullableString(p.Endereco),
		"tags":        tags,
	}

	body, err := c.doPost(ctx, "eleitores_whatsapp", data)
	if err != nil {
		return nil, err
	}

	row, err := decodeSingle[domain.Eleitor](body)
	if err != nil {
		return nil, fmt.Errorf("decode eleitor: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("supabase returned empty representation for eleitor insert")
	}
	return row, nil
}

func nullableString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
