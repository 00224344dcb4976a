package widget

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/linktrac/chatwidget/internal/billing"
	"github.com/linktrac/chatwidget/internal/dialogue"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// FormatText converts the backend's restricted markup to HTML: **spans**
// become <strong> and newlines become <br/>. Nothing else is recognized and
// nothing is escaped; the backend is a trusted source.
func FormatText(text string) string {
	out := boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
	return strings.ReplaceAll(out, "\n", "<br/>")
}

// RenderContactInfo turns the tagged contact variant into the widget's
// contact block. Sales contacts become a labeled list, support contacts a
// day/night panel. Nil renders nothing.
func RenderContactInfo(info *dialogue.ContactInfo) string {
	if info == nil {
		return ""
	}

	if info.Support != nil {
		var b strings.Builder
		b.WriteString("📞 Contatos de Suporte:\n")
		fmt.Fprintf(&b, "Dia: %s\n", info.Support.Dia)
		fmt.Fprintf(&b, "Noite: %s - %s", info.Support.Noite.Name, info.Support.Noite.Phone)
		return b.String()
	}

	if len(info.Sales) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("📞 Contatos de Vendas:\n")
	for i, c := range info.Sales {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", c.Name, c.Phone)
	}
	return b.String()
}

// formatDebtResult builds the consultation summary shown as a bot message.
// A payload-level error wins over everything; an empty list is the distinct
// "no debts" case, not a failure.
func formatDebtResult(res *billing.DebtResult) string {
	var b strings.Builder
	b.WriteString("📊 **Resultado da Consulta de Débitos**\n\n")

	switch {
	case res.Error != "":
		b.WriteString("❌ " + res.Error)
	case len(res.Debts) > 0:
		fmt.Fprintf(&b, "✅ Encontrados %d débito(s):\n\n", len(res.Debts))
		for i, d := range res.Debts {
			fmt.Fprintf(&b, "**Débito %d:**\n", i+1)
			fmt.Fprintf(&b, "• Valor: R$ %.2f\n", d.Value)
			fmt.Fprintf(&b, "• Vencimento: %s\n", d.DueDate)
			fmt.Fprintf(&b, "• Status: %s\n\n", d.Status)
		}
	default:
		b.WriteString("✅ Nenhum débito encontrado para este CPF/CNPJ.")
	}

	return b.String()
}

// formatBoletoResult builds the generation summary shown as a bot message.
// The link fields are independently optional and only rendered when present.
func formatBoletoResult(res *billing.BoletoResult) string {
	if res.Error != "" {
		return "❌ Erro: " + res.Error
	}

	var b strings.Builder
	b.WriteString("📋 **Boleto Gerado com Sucesso!**\n\n")
	fmt.Fprintf(&b, "✅ **ID do Pagamento:** %s\n", res.ID)
	fmt.Fprintf(&b, "💰 **Valor:** R$ %.2f\n", res.Value)
	fmt.Fprintf(&b, "📅 **Vencimento:** %s\n", res.DueDate)
	if res.InvoiceURL != "" {
		fmt.Fprintf(&b, "🔗 **Link do Boleto:** %s\n", res.InvoiceURL)
	}
	if res.BankSlipURL != "" {
		fmt.Fprintf(&b, "📄 **Código de Barras:** %s", res.BankSlipURL)
	}

	return b.String()
}
