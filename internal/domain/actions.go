// Package domain — actions.go define o vocabulário fechado de ações do
// Assessor IA e os parâmetros tipados de cada uma.
//
// Toda mensagem que chega do WhatsApp vira exatamente um Action: ou pelo
// matcher manual (caminho rápido, determinístico) ou pelo parser IA
// (caminho lento, OpenRouter). O despacho é um switch exaustivo sobre
// ActionKind — string solta de ação só existe na fronteira de normalização.
package domain

// ActionKind enumerates every action the dispatcher knows how to route.
type ActionKind string

const (
	AcaoCadastrarEleitor ActionKind = "cadastrar_eleitor"
	AcaoCriarIndicacao   ActionKind = "criar_indicacao"
	AcaoRegistrarDemanda ActionKind = "registrar_demanda"
	AcaoCadastrarIdeia   ActionKind = "cadastrar_ideia"
	AcaoConsultarStatus  ActionKind = "consultar_status"
	AcaoListarItens      ActionKind = "listar_itens"
	AcaoConsultarEmail   ActionKind = "consultar_email"
	AcaoConsultarAgenda  ActionKind = "consultar_agenda"
	AcaoObterAjuda       ActionKind = "obter_ajuda"

	// AcaoChat é conversa livre — resposta textual, sem efeito colateral.
	AcaoChat ActionKind = "chat"

	// Sentinelas vindas do parser IA. São terminais: o dispatcher formata a
	// mensagem e retorna, nenhum handler de persistência é invocado.
	AcaoSemPermissao   ActionKind = "sem_permissao"
	AcaoEsclarecer     ActionKind = "esclarecer"
	AcaoDadosFaltantes ActionKind = "dados_faltantes"

	// AcaoDesconhecida absorve nomes de ação que o modelo inventou.
	// Mantê-la no enum deixa o switch do dispatcher exaustivo em vez de
	// depender de um default arbitrário.
	AcaoDesconhecida ActionKind = "desconhecida"
)

// Role é o cargo do usuário dentro do gabinete.
type Role string

const (
	RolePolitico      Role = "politico"
	RoleChefeGabinete Role = "chefe_gabinete"
	RoleAssessor      Role = "assessor"
	RoleAtendente     Role = "atendente"
)

// EleitorParams são os parâmetros de cadastrar_eleitor.
// O caminho manual preenche só Nome (o resto da mensagem, verbatim);
// o parser IA pode extrair telefone, endereço e tags.
type EleitorParams struct {
	Nome     string
	Telefone string
	Endereco string
	Tags     []string
}

// ItemParams cobre criar_indicacao, registrar_demanda e cadastrar_ideia —
// as três compartilham o formato titulo/descricao(/anexos).
type ItemParams struct {
	Titulo    string
	Descricao string
	Anexos    []string
}

// StatusParams são os parâmetros de consultar_status. ID aceita prefixo
// curto (os 8 primeiros caracteres que as respostas de criação exibem).
type StatusParams struct {
	Tipo string
	ID   string
}

// ListarParams são os parâmetros de listar_itens.
type ListarParams struct {
	Tipo string
}

// ChatParams carrega o texto de resposta conversacional.
type ChatParams struct {
	Text string
}

// EsclarecerParams lista as interpretações candidatas para desambiguar.
type EsclarecerParams struct {
	Opcoes []string
}

// DadosFaltantesParams lista os campos que faltaram para executar a intenção.
type DadosFaltantesParams struct {
	Campos []string
}

// Action é o descritor normalizado produzido pelo matcher manual ou pelo
// parser IA. Kind indica qual dos ponteiros de parâmetro está preenchido;
// os demais ficam nil. Criado por mensagem, consumido uma vez, nunca
// persistido (só os efeitos e a entrada de auditoria persistem).
type Action struct {
	Kind ActionKind

	Eleitor        *EleitorParams
	Item           *ItemParams
	Status         *StatusParams
	Listagem       *ListarParams
	Chat           *ChatParams
	Esclarecer     *EsclarecerParams
	DadosFaltantes *DadosFaltantesParams
}

// ActionRequest é o body que o webhook upstream envia.
// Com Action preenchido, o pipeline de interpretação é pulado e a ação é
// despachada direto; com só UserText, roda matcher manual → parser IA.
type ActionRequest struct {
	Action     string         `json:"action,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	UserID     string         `json:"userId"`
	UserName   string         `json:"userName,omitempty"`
	GabineteID string         `json:"gabineteId"`
	UserRole   string         `json:"userRole"`
	UserText   string         `json:"userText,omitempty"`
}

// ActionResult é o contrato de resposta de todo handler: falha de negócio
// (campo faltando, tipo inválido, não encontrado) é Success=false com
// mensagem acionável, nunca um erro Go — HTTP 200 em ambos os casos.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
