package service

import (
	"strings"

	"github.com/legisfy/assessor-ia-go/internal/domain"
)

// AjudaMessage monta o texto de ajuda filtrado por cargo. Função pura:
// nenhum acesso a store, nunca auditada.
func AjudaMessage(role domain.Role) string {
	var b strings.Builder

	b.WriteString("🤖 *Agente IA Legisfy - WhatsApp*\n\n")
	b.WriteString("📋 *Comandos disponíveis para " + string(role) + ":*\n\n")

	if cargosGestao[role] {
		b.WriteString("👥 *Eleitores:*\n")
		b.WriteString("• \"cadastrar eleitor [nome] [telefone] [endereço]\"\n")
		b.WriteString("• \"meus eleitores\"\n\n")

		b.WriteString("📋 *Indicações:*\n")
		b.WriteString("• \"criar indicacao [título] - [descrição]\"\n")
		b.WriteString("• \"minhas indicacoes\"\n\n")

		b.WriteString("🎯 *Demandas:*\n")
		b.WriteString("• \"registrar demanda [título] - [descrição]\"\n")
		b.WriteString("• \"minhas demandas\"\n\n")
	}

	if cargosIdeias[role] {
		b.WriteString("💡 *Ideias:*\n")
		b.WriteString("• \"cadastrar ideia [título] - [descrição]\"\n")
		b.WriteString("• \"minhas ideias\"\n\n")
	}

	b.WriteString("📊 *Consultas:*\n")
	b.WriteString("• \"status [tipo] [id]\" - consultar status\n")
	b.WriteString("• \"ajuda\" - ver comandos\n\n")

	b.WriteString("💬 *Exemplos:*\n")
	b.WriteString("• \"cadastrar eleitor João Silva 11999999999 Rua das Flores, 123\"\n")
	b.WriteString("• \"criar indicacao Iluminação na praça - Melhorar a iluminação da praça central\"\n")
	b.WriteString("• \"status demanda a1b2c3d4\"\n\n")

	b.WriteString("📧 Você também pode enviar áudios e imagens que serão processados automaticamente!")

	return b.String()
}
