package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/xavierca1/prospec-crm/internal/entity"
	"github.com/xavierca1/prospec-crm/internal/infra/integration/apollo"
	"github.com/xavierca1/prospec-crm/internal/infra/mail"
)

// EnrichContactUseCase é o orquestrador do cascade de enriquecimento:
// decide qual provedor chamar primeiro, aplica o lock de claim e dirige a
// sequência de fallback. Nada daqui propaga exceção de provedor pro
// chamador — todo desfecho vira um EnrichOutput estruturado.
type EnrichContactUseCase struct {
	Contacts entity.ContactRepositoryInterface
	Credits  entity.CreditRepositoryInterface
	Scraper  ProfileScrapeProvider
	Matcher  ContactMatchProvider

	// Base das callback URLs do reveal assíncrono de telefone.
	CallbackBaseURL string

	// Opcional: aviso pro operador quando o saldo zera num débito.
	Alerts CreditAlertSender
}

func NewEnrichContactUseCase(
	contacts entity.ContactRepositoryInterface,
	credits entity.CreditRepositoryInterface,
	scraper ProfileScrapeProvider,
	matcher ContactMatchProvider,
	callbackBaseURL string,
) *EnrichContactUseCase {
	return &EnrichContactUseCase{
		Contacts:        contacts,
		Credits:         credits,
		Scraper:         scraper,
		Matcher:         matcher,
		CallbackBaseURL: callbackBaseURL,
	}
}

func (uc *EnrichContactUseCase) Execute(ctx context.Context, input EnrichInput) (*EnrichOutput, error) {
	if input.Field != entity.FieldEmail && input.Field != entity.FieldPhone {
		return nil, &DomainError{Code: "invalid_field", Message: "field deve ser email ou phone"}
	}

	// Pré-condição: sem par de identificadores fortes não se gasta chamada
	// paga nem crédito. Não é erro — e não consome o claim, então o contato
	// pode ser tentado de novo quando tiver dados melhores.
	if !input.Identifiers.Strong() {
		log.Printf("⚠️ [ENRICH] Contato %s sem identificadores fortes, pulando", input.ContactID)
		_ = uc.Contacts.SetApolloTrail(ctx, input.ContactID, false, ReasonNoStrongIdentifiers)
		return &EnrichOutput{Found: false, Status: entity.EnrichmentDone, Reason: ReasonNoStrongIdentifiers}, nil
	}

	// Lock de claim: UPDATE condicional no banco, correto entre processos.
	// Zero linhas afetadas = outro chamador já reivindicou ou completou.
	claimed, err := uc.Contacts.ClaimField(ctx, input.ContactID, input.Field)
	if err != nil {
		return nil, technical("claim_failed", "erro ao reivindicar campo", err)
	}
	if !claimed {
		return &EnrichOutput{Status: entity.EnrichmentDone, AlreadyChecked: true}, nil
	}

	if err := uc.Contacts.MarkProcessing(ctx, input.ContactID); err != nil {
		return nil, technical("mark_processing_failed", "erro ao marcar processing", err)
	}

	// Etapa 1: scrape de perfil (grátis). Falha ou timeout = miss.
	fallbackReason := ReasonApifyMiss
	if input.Identifiers.LinkedInURL == "" {
		log.Printf("⚠️ [ENRICH] Contato %s sem URL de LinkedIn, indo direto pro fallback", input.ContactID)
		fallbackReason = ReasonNoLinkedInURL
	} else {
		out, handled := uc.tryApify(ctx, input)
		if handled {
			return out, nil
		}
	}

	// Etapa 3: fallback pro people match.
	return uc.ApolloFallback(ctx, input, fallbackReason)
}

// tryApify roda o caminho do scrape. Retorna (output, true) se o cascade
// terminou aqui (short-circuit de custo); (nil, false) manda pro fallback.
func (uc *EnrichContactUseCase) tryApify(ctx context.Context, input EnrichInput) (*EnrichOutput, bool) {
	profile, err := uc.Scraper.FetchProfile(ctx, input.Identifiers.LinkedInURL)
	if err != nil {
		log.Printf("⚠️ [ENRICH] Apify falhou para %s: %v", input.ContactID, err)
		_ = uc.Contacts.SetApifyOutcome(ctx, input.ContactID, true, false)
		return nil, false
	}

	_ = uc.Contacts.SetApifyOutcome(ctx, input.ContactID, true, profile.Email != "")

	value := profile.Email
	other := entity.FieldPhone
	otherValue := profile.Phone
	if input.Field == entity.FieldPhone {
		value = profile.Phone
		other = entity.FieldEmail
		otherValue = profile.Email
	}

	// Dado extra do outro campo é salvo oportunisticamente mesmo quando o
	// campo pedido veio vazio.
	if otherValue != "" {
		_ = uc.Contacts.SavePartialField(ctx, input.ContactID, other, otherValue)
	}

	if value == "" {
		return nil, false
	}

	// Short-circuit de custo: o scrape já trouxe o campo pedido, o segundo
	// provedor nunca é chamado e nenhum crédito é gasto.
	result := entity.EnrichmentResult{
		Field:  input.Field,
		Value:  value,
		Source: entity.SourceApify,
		Status: entity.EnrichmentDone,
		Reason: ReasonFoundByApify,
	}
	if err := uc.Contacts.SaveEnrichment(ctx, input.ContactID, result); err != nil {
		log.Printf("❌ [ENRICH] Erro ao salvar resultado apify: %v", err)
	}
	_ = uc.Contacts.SetApolloTrail(ctx, input.ContactID, false, ReasonFoundByApify)

	log.Printf("✅ [ENRICH] %s de %s resolvido pelo Apify", input.Field, input.ContactID)
	return &EnrichOutput{Found: true, Value: value, Source: entity.SourceApify, Status: entity.EnrichmentDone}, true
}

// ApolloFallback é a etapa paga do cascade. Também é invocada direto pelo
// ingestor do webhook de conclusão do Apify — o ingestor É a ponte para o
// fallback, não só um registrador de status.
func (uc *EnrichContactUseCase) ApolloFallback(ctx context.Context, input EnrichInput, reason string) (*EnrichOutput, error) {
	_ = uc.Contacts.SetApolloTrail(ctx, input.ContactID, true, reason)

	matchInput := apollo.MatchInput{
		FirstName:        input.Identifiers.FirstName,
		LastName:         input.Identifiers.LastName,
		OrganizationName: input.Identifiers.Company,
		Domain:           input.Identifiers.Domain,
	}

	if input.Field == entity.FieldPhone {
		return uc.dispatchPhoneMatch(ctx, input, matchInput)
	}

	out, err := uc.Matcher.MatchEmail(ctx, matchInput)
	if err != nil {
		return uc.providerError(ctx, input, err), nil
	}

	email := out.FirstEmail()
	if email == "" {
		result := entity.EnrichmentResult{Field: input.Field, Status: entity.EnrichmentNotFound}
		if err := uc.Contacts.SaveEnrichment(ctx, input.ContactID, result); err != nil {
			log.Printf("❌ [ENRICH] Erro ao salvar not_found: %v", err)
		}
		return &EnrichOutput{Found: false, Status: entity.EnrichmentNotFound}, nil
	}

	// Débito ANTES do commit do valor: valor sem crédito cobrado nunca é
	// persistido. Corrida entre checagem e gasto resolve no deduct atômico.
	newBalance, err := uc.Credits.Deduct(ctx, input.UserID, entity.CreditTypeForField(input.Field), CostPerEnrichment)
	if err != nil {
		return uc.providerError(ctx, input, fmt.Errorf("erro no ledger de créditos: %w", err)), nil
	}
	if newBalance == entity.InsufficientBalance {
		log.Printf("⚠️ [ENRICH] Créditos insuficientes para %s, valor descartado", input.ContactID)
		result := entity.EnrichmentResult{Field: input.Field, Status: entity.EnrichmentError, Reason: ReasonInsufficientCredits}
		if err := uc.Contacts.SaveEnrichment(ctx, input.ContactID, result); err != nil {
			log.Printf("❌ [ENRICH] Erro ao salvar insuficiência: %v", err)
		}
		return &EnrichOutput{Found: false, Status: entity.EnrichmentError, Reason: ReasonInsufficientCredits}, nil
	}

	uc.notifyIfDrained(input.UserID, entity.CreditTypeForField(input.Field), newBalance)

	result := entity.EnrichmentResult{
		Field:  input.Field,
		Value:  email,
		Source: entity.SourceApollo,
		Status: entity.EnrichmentDone,
	}
	if err := uc.Contacts.SaveEnrichment(ctx, input.ContactID, result); err != nil {
		log.Printf("❌ [ENRICH] Erro ao salvar resultado apollo: %v", err)
	}

	log.Printf("✅ [ENRICH] %s de %s resolvido pelo Apollo (saldo: %d)", input.Field, input.ContactID, newBalance)
	return &EnrichOutput{Found: true, Value: email, Source: entity.SourceApollo, Status: entity.EnrichmentDone}, nil
}

// dispatchPhoneMatch: telefone é assíncrono no provedor. Despacha com a
// callback URL parametrizada e devolve processing — o ingestor do callback
// completa o registro depois. Sem timeout do nosso lado: contato preso em
// processing sem webhook é modo de falha aceito.
func (uc *EnrichContactUseCase) dispatchPhoneMatch(ctx context.Context, input EnrichInput, matchInput apollo.MatchInput) (*EnrichOutput, error) {
	callback := fmt.Sprintf("%s/webhooks/apollo?itemId=%s&field=%s&searchType=phone",
		uc.CallbackBaseURL, url.QueryEscape(input.ContactID), entity.FieldPhone)

	if err := uc.Matcher.MatchPhoneAsync(ctx, matchInput, callback); err != nil {
		return uc.providerError(ctx, input, err), nil
	}

	log.Printf("📞 [ENRICH] Reveal de telefone despachado para %s, aguardando callback", input.ContactID)
	return &EnrichOutput{Status: entity.EnrichmentProcessing}, nil
}

// notifyIfDrained manda o aviso de saldo zerado. Best-effort: falha de SMTP
// nunca afeta o resultado do enriquecimento.
func (uc *EnrichContactUseCase) notifyIfDrained(userID, creditType string, balance int) {
	if uc.Alerts == nil || balance != 0 {
		return
	}
	if err := uc.Alerts.SendLowCreditAlert(mail.LowCreditData{
		UserID:     userID,
		CreditType: creditType,
		Balance:    balance,
	}); err != nil {
		log.Printf("⚠️ [ENRICH] Erro ao enviar alerta de saldo: %v", err)
	}
}

// providerError persiste o erro, SOLTA o claim (falha de provedor não pode
// travar o campo para sempre) e devolve um output status=error em vez de
// estourar pro chamador.
func (uc *EnrichContactUseCase) providerError(ctx context.Context, input EnrichInput, cause error) *EnrichOutput {
	log.Printf("❌ [ENRICH] Provedor falhou para %s/%s: %v", input.ContactID, input.Field, cause)

	result := entity.EnrichmentResult{Field: input.Field, Status: entity.EnrichmentError, Reason: cause.Error()}
	if err := uc.Contacts.SaveEnrichment(ctx, input.ContactID, result); err != nil {
		log.Printf("❌ [ENRICH] Erro ao salvar status de erro: %v", err)
	}
	if err := uc.Contacts.ReleaseClaim(ctx, input.ContactID, input.Field); err != nil {
		log.Printf("❌ [ENRICH] Erro ao soltar claim: %v", err)
	}

	return &EnrichOutput{Found: false, Status: entity.EnrichmentError, Reason: cause.Error()}
}
