package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/infra/resilience"
	"github.com/legisfy/assessor-ia-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("interpreter")

// mensagemFalhaIA é a resposta quando o modelo está fora do ar ou estourou
// o timeout. O parser nunca propaga erro: o pior caso é um chat genérico.
const mensagemFalhaIA = "No momento tive um problema técnico, mas estou aqui para ajudar. Pode repetir?"

// AIParser é o reconhecedor de fallback: só roda quando MatchManual
// retornou nil. Faz uma única chamada ao modelo pedindo um JSON
// {action, parameters} e normaliza o resultado defensivamente.
type AIParser struct {
	completer port.ChatCompleter
	bulkhead  *resilience.Bulkhead
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAIParser cria o parser com dependências injetadas. timeout limita a
// chamada ao modelo — um modelo lento nunca segura a resposta do chat
// indefinidamente; o cancelamento abandona a chamada em voo e cai no chat
// genérico.
func NewAIParser(completer port.ChatCompleter, bulkhead *resilience.Bulkhead, timeout time.Duration, logger *zap.Logger) *AIParser {
	return &AIParser{
		completer: completer,
		bulkhead:  bulkhead,
		timeout:   timeout,
		logger:    logger,
	}
}

// Parse interpreta a mensagem via modelo. O retorno é sempre um Action
// utilizável:
//   - JSON válido → ação normalizada (inclusive sentinelas sem_permissao,
//     esclarecer e dados_faltantes, que o modelo pode emitir);
//   - resposta não-JSON → chat com o texto bruto do modelo (conversa, não erro);
//   - falha de rede/timeout → chat com desculpa padrão.
func (p *AIParser) Parse(ctx context.Context, userText string, userRole domain.Role, userName string) *domain.Action {
	ctx, span := tracer.Start(ctx, "AIParser.Parse")
	defer span.End()
	span.SetAttributes(attribute.String("user.role", string(userRole)))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.bulkhead.Acquire(ctx); err != nil {
		p.logger.Warn("ai parser: bulkhead cheio, degradando para chat", zap.Error(err))
		return chatFallback(mensagemFalhaIA)
	}
	defer p.bulkhead.Release()

	content, err := p.completer.Complete(ctx, systemPrompt(userRole, userName), userText)
	if err != nil {
		p.logger.Error("ai parser: chamada ao modelo falhou",
			zap.String("user_role", string(userRole)),
			zap.Error(err),
		)
		return chatFallback(mensagemFalhaIA)
	}

	var raw rawDescriptor
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &raw); err != nil {
		// O modelo respondeu texto em vez de JSON — trata como conversa.
		p.logger.Debug("ai parser: resposta não-JSON tratada como chat",
			zap.Int("content_length", len(content)),
		)
		return chatFallback(content)
	}

	action := Normalize(raw.Action, raw.Parameters)
	p.logger.Info("ai parser: ação reconhecida",
		zap.String("action", string(action.Kind)),
	)
	return action
}

func chatFallback(text string) *domain.Action {
	return &domain.Action{
		Kind: domain.AcaoChat,
		Chat: &domain.ChatParams{Text: text},
	}
}

// stripCodeFences remove o embrulho ```json ... ``` que o modelo às vezes
// adiciona mesmo instruído a responder só o JSON.
func stripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// systemPrompt monta o prompt do parser: vocabulário de ações, cargo e nome
// do chamador, e a instrução de priorizar ação sobre conversa. A permissão
// que o modelo reporta é consultiva — o gate determinístico do dispatcher
// decide de verdade.
func systemPrompt(userRole domain.Role, userName string) string {
	if userName == "" {
		userName = "Usuário"
	}
	return fmt.Sprintf(`Você é um parser de comandos para o sistema Legisfy WhatsApp.

OBJETIVO: Analisar a mensagem do usuário e extrair a ação e parâmetros. Você é um Assessor IA proativo.

AÇÕES VÁLIDAS:
- cadastrar_eleitor: {nome, telefone?, endereco?, tags?} (Use para: cadastrar, novo eleitor, registrar contato)
- criar_indicacao: {titulo, descricao?} (Use para: nova indicação, criar lei, sugestão de projeto)
- registrar_demanda: {titulo, descricao?, anexos?} (Use para: nova demanda, pedido de munícipe, reclamação, protocolo)
- cadastrar_ideia: {titulo, descricao?, anexos?} (Use para: nova ideia, insights, sugestões internas)
- consultar_status: {tipo, id}
- listar_itens: {tipo}
- consultar_email: {}
- consultar_agenda: {}
- obter_ajuda: {}
- chat: {text} // **APENAS** se o usuário estiver apenas jogando conversa fora, fazendo uma pergunta que NÃO envolva as ações acima.

INSTRUÇÕES CRÍTICAS:
1. **PRIORIDADE MÁXIMA PARA AÇÕES**: Se o usuário demonstrar intenção de realizar qualquer uma das ações acima (ex: "queria registrar uma demanda", "cria aí um eleitor"), você **DEVE** retornar a ação correspondente, NÃO a ação "chat".
2. Se faltar informações (como o título da demanda), use a ação "dados_faltantes" com {campos_necessarios}, ou se for algo simples, tente inferir.
3. Se o comando for ambíguo entre duas ações, use "esclarecer" com {opcoes}.
4. Se o usuário estiver apenas conversando (ex: "bom dia", "como você está?"), aí sim use a ação "chat".
5. Na ação "chat", use o nome/cargo do usuário: %s (%s).
6. Se o comando não for permitido para o cargo, retorne "sem_permissao".
7. Responda **APENAS** com o JSON válido.

CARGO DO USUÁRIO: %s
NOME DO USUÁRIO: %s

Responda APENAS com o JSON válido, sem explicações.`, userName, userRole, userRole, userName)
}
