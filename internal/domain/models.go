package domain

import "time"

// Entidades do gabinete persistidas via Supabase. Todas são tenant-scoped
// por GabineteID; nenhuma query sai do gabinete do chamador.

// Eleitor é um munícipe/constituinte cadastrado pelo canal WhatsApp.
type Eleitor struct {
	ID         string    `json:"id"`
	GabineteID string    `json:"gabinete_id"`
	Nome       string    `json:"nome"`
	Telefone   string    `json:"telefone,omitempty"`
	Endereco   string    `json:"endereco,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Indicacao é uma indicação legislativa. Nasce com status CRIADA.
type Indicacao struct {
	ID         string    `json:"id"`
	GabineteID string    `json:"gabinete_id"`
	Titulo     string    `json:"titulo"`
	Descricao  string    `json:"descricao,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Demanda é um pedido de munícipe. Nasce com status ABERTA.
type Demanda struct {
	ID         string    `json:"id"`
	GabineteID string    `json:"gabinete_id"`
	Titulo     string    `json:"titulo"`
	Descricao  string    `json:"descricao,omitempty"`
	Status     string    `json:"status"`
	Anexos     []string  `json:"anexos,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ideia é um insight interno; Origem marca o canal de captura.
type Ideia struct {
	ID         string    `json:"id"`
	GabineteID string    `json:"gabinete_id"`
	Titulo     string    `json:"titulo"`
	Descricao  string    `json:"descricao,omitempty"`
	Origem     string    `json:"origem"`
	Anexos     []string  `json:"anexos,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Status iniciais fixados na criação.
const (
	StatusIndicacaoCriada = "CRIADA"
	StatusDemandaAberta   = "ABERTA"
	OrigemWhatsApp        = "whatsapp"
)

// ItemResumo é a projeção comum usada por consultar_status e listar_itens:
// eleitores têm Nome, os demais têm Titulo.
type ItemResumo struct {
	ID        string    `json:"id"`
	Titulo    string    `json:"titulo,omitempty"`
	Nome      string    `json:"nome,omitempty"`
	Descricao string    `json:"descricao,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Nome ou título, o que estiver preenchido.
func (i *ItemResumo) Display() string {
	if i.Titulo != "" {
		return i.Titulo
	}
	return i.Nome
}

// TipoItem identifica uma das quatro coleções consultáveis.
type TipoItem string

const (
	TipoEleitores  TipoItem = "eleitores"
	TipoDemandas   TipoItem = "demandas"
	TipoIndicacoes TipoItem = "indicacoes"
	TipoIdeias     TipoItem = "ideias"
)

// ParseTipoListagem mapeia o token livre do usuário (singular ou plural)
// para um TipoItem. Token não reconhecido é falha de validação do handler,
// nunca exceção.
func ParseTipoListagem(token string) (TipoItem, bool) {
	switch normalizeTipo(token) {
	case "eleitor", "eleitores":
		return TipoEleitores, true
	case "demanda", "demandas":
		return TipoDemandas, true
	case "indicacao", "indicacoes":
		return TipoIndicacoes, true
	case "ideia", "ideias":
		return TipoIdeias, true
	}
	return "", false
}

// ParseTipoConsulta é o subconjunto válido para consultar_status —
// eleitores não têm ciclo de status.
func ParseTipoConsulta(token string) (TipoItem, bool) {
	t, ok := ParseTipoListagem(token)
	if !ok || t == TipoEleitores {
		return "", false
	}
	return t, true
}

func normalizeTipo(token string) string {
	out := make([]rune, 0, len(token))
	for _, r := range token {
		switch r {
		case 'ç':
			r = 'c'
		case 'ã', 'á', 'â':
			r = 'a'
		case 'é', 'ê':
			r = 'e'
		case 'í':
			r = 'i'
		case 'õ', 'ó', 'ô':
			r = 'o'
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// Integration é a configuração de integração externa do gabinete
// (linha única em ia_integrations).
type Integration struct {
	GabineteID        string `json:"gabinete_id"`
	GoogleEnabled     bool   `json:"google_enabled"`
	GoogleAccessToken string `json:"google_access_token,omitempty"`
}

// Connected reporta se a integração Google está habilitada e com token.
func (i *Integration) Connected() bool {
	return i != nil && i.GoogleEnabled && i.GoogleAccessToken != ""
}

// AuditEntry é uma linha append-only de auditoria: quem, onde, o quê.
// Uma por ação despachada com sucesso, exceto obter_ajuda.
type AuditEntry struct {
	UsuarioID  string       `json:"usuario_id"`
	GabineteID string       `json:"gabinete_id"`
	Acao       string       `json:"acao"`
	Payload    AuditPayload `json:"payload_resumido"`
}

// AuditPayload resume a ação resolvida e seu resultado.
type AuditPayload struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Result     any            `json:"result,omitempty"`
}
