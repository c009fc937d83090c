package entity

import (
	"context"
	"strings"
	"time"
)

// Motivos de bloqueio de email
const (
	BlockReasonBounce     = "bounce"
	BlockReasonBounceAuto = "bounce_auto"
	BlockReasonSpam       = "spam"
)

const (
	// BlockThreshold: a partir desta contagem o endereço fica
	// permanentemente não-enviável para o usuário.
	BlockThreshold = 3

	// HardBounceCount: hard bounce seta a contagem no limite de cara.
	HardBounceCount = 3

	// SpamBounceCount: reclamação de spam é terminal.
	SpamBounceCount = 999
)

type EmailBlocklistEntry struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Reason      string    `json:"reason"` // bounce | bounce_auto | spam
	BounceCount int       `json:"bounce_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *EmailBlocklistEntry) Blocked() bool {
	return e.BounceCount >= BlockThreshold
}

// NextBounceState calcula a regra de escalada de bounce:
//   - entrada nova: hard começa em 3, soft em 1, motivo "bounce"
//   - entrada existente: incrementa 1 (hard força mínimo 3); o motivo
//     escala para "bounce_auto" quando a contagem chega em >= 3
//   - spam nunca é rebaixado
//
// O UPSERT do repositório espelha exatamente esta função; ela existe como
// código para a regra ser testável fora do SQL.
func NextBounceState(current *EmailBlocklistEntry, hard bool) (int, string) {
	if current == nil {
		if hard {
			return HardBounceCount, BlockReasonBounce
		}
		return 1, BlockReasonBounce
	}

	if current.Reason == BlockReasonSpam {
		return current.BounceCount, BlockReasonSpam
	}

	count := current.BounceCount + 1
	if hard && count < HardBounceCount {
		count = HardBounceCount
	}

	reason := current.Reason
	if count >= BlockThreshold {
		reason = BlockReasonBounceAuto
	}
	return count, reason
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type BlocklistRepositoryInterface interface {
	RegisterBounce(ctx context.Context, userID, email string, hard bool) error
	RegisterSpam(ctx context.Context, userID, email string) error
	IsBlocked(ctx context.Context, userID, email string) (bool, error)
	Find(ctx context.Context, userID, email string) (*EmailBlocklistEntry, error)
}
