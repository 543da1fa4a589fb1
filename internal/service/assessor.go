// Package service contém o Assessor: o pipeline que recebe a requisição do
// webhook, resolve a ação (manual → IA → direta), aplica o gate de
// permissão, despacha para o handler e audita o resultado.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/infra/cache"
	"github.com/legisfy/assessor-ia-go/internal/infra/observability"
	"github.com/legisfy/assessor-ia-go/internal/interpreter"
	"github.com/legisfy/assessor-ia-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

const chatBlurb = `Sou o assistente IA do gabinete. Posso cadastrar eleitores, demandas, indicações e ideias. Diga por exemplo: "cadastrar eleitor João Silva 11999999999 Rua das Flores, 123".`

// Parser interpreta texto livre em uma ação. O AIParser concreto implementa;
// os testes injetam um fake com contagem de chamadas.
type Parser interface {
	Parse(ctx context.Context, userText string, userRole domain.Role, userName string) *domain.Action
}

// Assessor é o serviço central de despacho de ações.
type Assessor struct {
	parser       Parser
	eleitores    port.EleitorStore
	itens        port.ItemStore
	integrations port.IntegrationStore
	integrCache  *cache.InMemory[*domain.Integration]
	auditor      *Auditor
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewAssessor cria o serviço com dependências injetadas.
func NewAssessor(
	parser Parser,
	eleitores port.EleitorStore,
	itens port.ItemStore,
	integrations port.IntegrationStore,
	integrCache *cache.InMemory[*domain.Integration],
	auditor *Auditor,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Assessor {
	return &Assessor{
		parser:       parser,
		eleitores:    eleitores,
		itens:        itens,
		integrations: integrations,
		integrCache:  integrCache,
		auditor:      auditor,
		metrics:      metrics,
		logger:       logger,
	}
}

// Process executa o pipeline completo para uma requisição.
//
// Interpretação: com action presente o texto é ignorado e a ação é
// normalizada direto; senão, o matcher manual tenta primeiro e só o miss
// cai no parser IA — frase que casa regra manual nunca gasta token.
//
// O retorno é sempre um ActionResult utilizável (HTTP 200): falha de
// negócio é Success=false com mensagem acionável em pt-BR.
func (s *Assessor) Process(ctx context.Context, req *domain.ActionRequest) *domain.ActionResult {
	ctx, span := tracer.Start(ctx, "Assessor.Process")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("process_action", time.Since(start))
	}()

	role := domain.Role(strings.TrimSpace(req.UserRole))

	var action *domain.Action
	direct := false

	if req.Action == "" && strings.TrimSpace(req.UserText) != "" {
		if action = interpreter.MatchManual(req.UserText); action != nil {
			s.metrics.IncrInterpretation(observability.SourceManual)
		} else {
			action = s.parser.Parse(ctx, req.UserText, role, req.UserName)
			s.metrics.IncrInterpretation(observability.SourceAI)
		}
	} else {
		direct = true
		action = interpreter.Normalize(req.Action, req.Parameters)
		s.metrics.IncrInterpretation(observability.SourceDirect)
	}

	span.SetAttributes(
		attribute.String("action.kind", string(action.Kind)),
		attribute.Bool("action.direct", direct),
	)

	// Gate determinístico: decide aqui, independente do que o modelo achou.
	if !Allowed(action, role) {
		s.logger.Warn("ação negada por permissão",
			zap.String("action", string(action.Kind)),
			zap.String("user_role", req.UserRole),
			zap.String("gabinete_id", req.GabineteID),
		)
		s.metrics.IncrAction(string(action.Kind), "negada")
		return semPermissaoResult(req.UserRole)
	}

	result := s.dispatch(ctx, action, direct, req)

	status := "erro"
	if result.Success {
		status = "sucesso"
	}
	s.metrics.IncrAction(string(action.Kind), status)

	if result.Success && action.Kind != domain.AcaoObterAjuda {
		s.auditor.Record(ctx, &domain.AuditEntry{
			UsuarioID:  req.UserID,
			GabineteID: req.GabineteID,
			Acao:       string(action.Kind),
			Payload: domain.AuditPayload{
				Action:     string(action.Kind),
				Parameters: paramsSummary(action),
				Result:     result.Data,
			},
		})
	}

	return result
}

// dispatch roteia a ação resolvida. Switch exaustivo sobre o enum: cada
// caso, inclusive as sentinelas e a desconhecida, tem tratamento explícito.
func (s *Assessor) dispatch(ctx context.Context, action *domain.Action, direct bool, req *domain.ActionRequest) *domain.ActionResult {
	role := domain.Role(strings.TrimSpace(req.UserRole))

	switch action.Kind {
	case domain.AcaoCadastrarEleitor:
		return s.cadastrarEleitor(ctx, req.GabineteID, action.Eleitor)
	case domain.AcaoCriarIndicacao:
		return s.criarIndicacao(ctx, req.GabineteID, action.Item)
	case domain.AcaoRegistrarDemanda:
		return s.registrarDemanda(ctx, req.GabineteID, action.Item)
	case domain.AcaoCadastrarIdeia:
		return s.cadastrarIdeia(ctx, req.GabineteID, action.Item)
	case domain.AcaoConsultarStatus:
		return s.consultarStatus(ctx, req.GabineteID, action.Status)
	case domain.AcaoListarItens:
		return s.listarItens(ctx, req.GabineteID, action.Listagem)
	case domain.AcaoConsultarEmail:
		return s.consultarEmails(ctx, req.GabineteID)
	case domain.AcaoConsultarAgenda:
		return s.consultarAgenda(ctx, req.GabineteID)
	case domain.AcaoObterAjuda:
		return &domain.ActionResult{Success: true, Message: AjudaMessage(role)}

	case domain.AcaoChat:
		text := ""
		if action.Chat != nil {
			text = strings.TrimSpace(action.Chat.Text)
		}
		if text == "" {
			text = chatBlurb
		}
		return &domain.ActionResult{Success: true, Message: text}

	case domain.AcaoSemPermissao:
		return semPermissaoResult(req.UserRole)

	case domain.AcaoEsclarecer:
		var opcoes []string
		if action.Esclarecer != nil {
			opcoes = action.Esclarecer.Opcoes
		}
		var b strings.Builder
		for i, op := range opcoes {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%d. %s", i+1, op)
		}
		return &domain.ActionResult{
			Success: false,
			Message: fmt.Sprintf("🤔 Não entendi completamente. Você quis dizer:\n\n%s\n\nOu digite \"ajuda\" para ver todos os comandos.", b.String()),
		}

	case domain.AcaoDadosFaltantes:
		var campos []string
		if action.DadosFaltantes != nil {
			campos = action.DadosFaltantes.Campos
		}
		var b strings.Builder
		for i, campo := range campos {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("• " + campo)
		}
		return &domain.ActionResult{
			Success: false,
			Message: fmt.Sprintf("📝 Faltam algumas informações:\n\n%s\n\nTente novamente com os dados completos.", b.String()),
		}

	case domain.AcaoDesconhecida:
		if direct {
			return &domain.ActionResult{Success: false, Message: "Ação não reconhecida."}
		}
		return &domain.ActionResult{Success: true, Message: "Não entendi muito bem. Se quiser ver exemplos, envie \"ajuda\"."}
	}

	return &domain.ActionResult{Success: false, Message: "Ação não reconhecida."}
}

func semPermissaoResult(userRole string) *domain.ActionResult {
	return &domain.ActionResult{
		Success: false,
		Message: fmt.Sprintf("❌ Você não tem permissão para executar esta ação.\n\nSeu cargo: %s\n\nDigite \"ajuda\" para ver os comandos disponíveis.", userRole),
	}
}

// ---- handlers de persistência ----

func (s *Assessor) cadastrarEleitor(ctx context.Context, gabineteID string, p *domain.EleitorParams) *domain.ActionResult {
	if p == nil || strings.TrimSpace(p.Nome) == "" {
		return &domain.ActionResult{Success: false, Message: "Nome é obrigatório para cadastrar eleitor."}
	}

	eleitor, err := s.eleitores.CreateEleitor(ctx, gabineteID, p)
	if err != nil {
		s.logger.Error("falha ao cadastrar eleitor", zap.String("gabinete_id", gabineteID), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro ao cadastrar eleitor. Tente novamente."}
	}

	return &domain.ActionResult{
		Success: true,
		Message: fmt.Sprintf("✅ Eleitor %s cadastrado com sucesso!", p.Nome),
		Data:    eleitor,
	}
}

func (s *Assessor) criarIndicacao(ctx context.Context, gabineteID string, p *domain.ItemParams) *domain.ActionResult {
	if p == nil || strings.TrimSpace(p.Titulo) == "" {
		return &domain.ActionResult{Success: false, Message: "Título é obrigatório para criar indicação."}
	}

	ind, err := s.itens.CreateIndicacao(ctx, gabineteID, p)
	if err != nil {
		s.logger.Error("falha ao criar indicação", zap.String("gabinete_id", gabineteID), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro ao criar indicação. Tente novamente."}
	}

	return &domain.ActionResult{
		Success: true,
		Message: fmt.Sprintf("📋 Indicação %q criada com sucesso!\n\nStatus: %s\nID: %s", p.Titulo, ind.Status, shortID(ind.ID)),
		Data:    ind,
	}
}

func (s *Assessor) registrarDemanda(ctx context.Context, gabineteID string, p *domain.ItemParams) *domain.ActionResult {
	if p == nil || strings.TrimSpace(p.Titulo) == "" {
		return &domain.ActionResult{Success: false, Message: "Título é obrigatório para registrar demanda."}
	}

	dem, err := s.itens.CreateDemanda(ctx, gabineteID, p)
	if err != nil {
		s.logger.Error("falha ao registrar demanda", zap.String("gabinete_id", gabineteID), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro ao registrar demanda. Tente novamente."}
	}

	return &domain.ActionResult{
		Success: true,
		Message: fmt.Sprintf("🎯 Demanda %q registrada com sucesso!\n\nStatus: %s\nID: %s", p.Titulo, dem.Status, shortID(dem.ID)),
		Data:    dem,
	}
}

func (s *Assessor) cadastrarIdeia(ctx context.Context, gabineteID string, p *domain.ItemParams) *domain.ActionResult {
	if p == nil || strings.TrimSpace(p.Titulo) == "" {
		return &domain.ActionResult{Success: false, Message: "Título é obrigatório para cadastrar ideia."}
	}

	ideia, err := s.itens.CreateIdeia(ctx, gabineteID, p)
	if err != nil {
		s.logger.Error("falha ao cadastrar ideia", zap.String("gabinete_id", gabineteID), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro ao cadastrar ideia. Tente novamente."}
	}

	return &domain.ActionResult{
		Success: true,
		Message: fmt.Sprintf("💡 Ideia %q cadastrada com sucesso!\n\nID: %s", p.Titulo, shortID(ideia.ID)),
		Data:    ideia,
	}
}

func (s *Assessor) consultarStatus(ctx context.Context, gabineteID string, p *domain.StatusParams) *domain.ActionResult {
	if p == nil || p.Tipo == "" || p.ID == "" {
		return &domain.ActionResult{Success: false, Message: "Tipo e ID são obrigatórios para consultar status."}
	}

	tipo, ok := domain.ParseTipoConsulta(p.Tipo)
	if !ok {
		return &domain.ActionResult{Success: false, Message: "Tipo inválido. Use: demanda, indicacao ou ideia."}
	}

	item, err := s.itens.FindItemByIDPrefix(ctx, gabineteID, tipo, p.ID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return &domain.ActionResult{
				Success: false,
				Message: fmt.Sprintf("%s não encontrada com ID: %s", p.Tipo, p.ID),
			}
		}
		s.logger.Error("falha na consulta de status", zap.String("gabinete_id", gabineteID), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro interno na consulta."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Status de %s:\n\n", p.Tipo)
	fmt.Fprintf(&b, "🏷️ Título: %s\n", item.Display())
	fmt.Fprintf(&b, "📅 Criado: %s\n", dateBR(item.CreatedAt))
	if item.Status != "" {
		fmt.Fprintf(&b, "🔄 Status: %s\n", item.Status)
	}
	if item.Descricao != "" {
		fmt.Fprintf(&b, "📝 Descrição: %s\n", truncate(item.Descricao, 100))
	}

	return &domain.ActionResult{Success: true, Message: b.String()}
}

func (s *Assessor) listarItens(ctx context.Context, gabineteID string, p *domain.ListarParams) *domain.ActionResult {
	if p == nil || p.Tipo == "" {
		return &domain.ActionResult{Success: false, Message: "Tipo é obrigatório. Use: eleitores, demandas, indicacoes ou ideias."}
	}

	tipo, ok := domain.ParseTipoListagem(p.Tipo)
	if !ok {
		return &domain.ActionResult{Success: false, Message: "Tipo inválido. Use: eleitores, demandas, indicacoes ou ideias."}
	}

	itens, err := s.itens.ListItens(ctx, gabineteID, tipo, 10)
	if err != nil {
		s.logger.Error("falha na listagem", zap.String("gabinete_id", gabineteID), zap.String("tipo", string(tipo)), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro ao buscar dados."}
	}

	emoji := emojiTipo(tipo)
	if len(itens) == 0 {
		return &domain.ActionResult{
			Success: true,
			Message: fmt.Sprintf("%s Nenhum(a) %s encontrado(a).", emoji, p.Tipo),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Seus %s (últimos 10):\n\n", emoji, p.Tipo)
	for i, item := range itens {
		status := ""
		if item.Status != "" {
			status = " - " + item.Status
		}
		fmt.Fprintf(&b, "%d. %s%s\n   📅 %s | ID: %s\n\n", i+1, item.Display(), status, dateBR(item.CreatedAt), shortID(item.ID))
	}

	return &domain.ActionResult{Success: true, Message: b.String()}
}

func (s *Assessor) consultarEmails(ctx context.Context, gabineteID string) *domain.ActionResult {
	integ, err := s.integration(ctx, gabineteID)
	if err != nil {
		s.logger.Error("falha ao ler integração google", zap.String("gabinete_id", gabineteID), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro ao acessar Gmail."}
	}
	if !integ.Connected() {
		return &domain.ActionResult{Success: false, Message: "Google não está conectado ou habilitado."}
	}

	// Conteúdo ilustrativo; a chamada real à API do Gmail fica atrás da
	// integração por gabinete.
	return &domain.ActionResult{
		Success: true,
		Message: "📧 *E-mails recentes do Gabinete:*\n\n1. Convite: Sessão Plenária Especial - 14:00h\n2. Ofício 123/2024 - Sec. de Obras\n3. Feedback de Munícipe: Bairro Centro\n\n_Você pode me pedir para resumir qualquer um deles!_",
	}
}

func (s *Assessor) consultarAgenda(ctx context.Context, gabineteID string) *domain.ActionResult {
	integ, err := s.integration(ctx, gabineteID)
	if err != nil {
		s.logger.Error("falha ao ler integração google", zap.String("gabinete_id", gabineteID), zap.Error(err))
		return &domain.ActionResult{Success: false, Message: "Erro ao acessar Agenda."}
	}
	if !integ.Connected() {
		return &domain.ActionResult{Success: false, Message: "Google Agenda não está conectado."}
	}

	return &domain.ActionResult{
		Success: true,
		Message: fmt.Sprintf("📅 *Agenda de Hoje (%s):*\n\n• 09:00 - Reunião com Lideranças Comunitárias\n• 11:30 - Almoço de Bancada\n• 15:00 - Votação de Projetos de Lei\n\n_Deseja que eu agende algo novo?_", time.Now().Format("02/01")),
	}
}

// integration lê a configuração do gabinete com cache TTL na frente —
// email e agenda na mesma conversa não batem duas vezes no banco.
func (s *Assessor) integration(ctx context.Context, gabineteID string) (*domain.Integration, error) {
	if integ, ok := s.integrCache.Get(gabineteID); ok {
		s.metrics.IncrCacheHit("integrations")
		return integ, nil
	}
	s.metrics.IncrCacheMiss("integrations")

	integ, err := s.integrations.GetIntegration(ctx, gabineteID)
	if err != nil {
		return nil, err
	}
	s.integrCache.Set(gabineteID, integ)
	return integ, nil
}

// ---- helpers ----

func emojiTipo(tipo domain.TipoItem) string {
	switch tipo {
	case domain.TipoEleitores:
		return "👥"
	case domain.TipoDemandas:
		return "🎯"
	case domain.TipoIndicacoes:
		return "📋"
	case domain.TipoIdeias:
		return "💡"
	}
	return "📊"
}

// shortID devolve o fragmento exibível do id (8 primeiros caracteres).
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dateBR(t time.Time) string {
	return t.Format("02/01/2006")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// paramsSummary projeta os parâmetros tipados de volta para o formato solto
// gravado em payload_resumido.
func paramsSummary(a *domain.Action) map[string]any {
	out := map[string]any{}
	switch {
	case a.Eleitor != nil:
		out["nome"] = a.Eleitor.Nome
		if a.Eleitor.Telefone != "" {
			out["telefone"] = a.Eleitor.Telefone
		}
		if a.Eleitor.Endereco != "" {
			out["endereco"] = a.Eleitor.Endereco
		}
		if len(a.Eleitor.Tags) > 0 {
			out["tags"] = a.Eleitor.Tags
		}
	case a.Item != nil:
		out["titulo"] = a.Item.Titulo
		if a.Item.Descricao != "" {
			out["descricao"] = a.Item.Descricao
		}
		if len(a.Item.Anexos) > 0 {
			out["anexos"] = a.Item.Anexos
		}
	case a.Status != nil:
		out["tipo"] = a.Status.Tipo
		out["id"] = a.Status.ID
	case a.Listagem != nil:
		out["tipo"] = a.Listagem.Tipo
	case a.Chat != nil:
		out["text"] = a.Chat.Text
	}
	return out
}
