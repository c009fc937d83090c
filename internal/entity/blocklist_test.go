package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNextBounceStateNewEntry - Entrada nova: soft começa em 1, hard já
// nasce no limite de bloqueio.
func TestNextBounceStateNewEntry(t *testing.T) {
	count, reason := NextBounceState(nil, false)
	assert.Equal(t, 1, count)
	assert.Equal(t, BlockReasonBounce, reason)

	count, reason = NextBounceState(nil, true)
	assert.Equal(t, HardBounceCount, count)
	assert.Equal(t, BlockReasonBounce, reason)
}

// TestNextBounceStateSoftEscalation - Cada soft bounce incrementa 1 e o
// motivo escala para bounce_auto quando a contagem atinge o limite.
func TestNextBounceStateSoftEscalation(t *testing.T) {
	entry := &EmailBlocklistEntry{Reason: BlockReasonBounce, BounceCount: 1}

	count, reason := NextBounceState(entry, false)
	assert.Equal(t, 2, count)
	assert.Equal(t, BlockReasonBounce, reason)

	entry.BounceCount = 2
	count, reason = NextBounceState(entry, false)
	assert.Equal(t, 3, count)
	assert.Equal(t, BlockReasonBounceAuto, reason)
}

// TestNextBounceStateHardForcesThreshold - Hard bounce numa entrada
// existente força a contagem direto para o mínimo de bloqueio.
func TestNextBounceStateHardForcesThreshold(t *testing.T) {
	entry := &EmailBlocklistEntry{Reason: BlockReasonBounce, BounceCount: 1}

	count, reason := NextBounceState(entry, true)
	assert.Equal(t, HardBounceCount, count)
	assert.Equal(t, BlockReasonBounceAuto, reason)
}

// TestNextBounceStateHardAboveThresholdStillIncrements - Hard bounce acima
// do limite não trava a contagem: continua subindo normalmente.
func TestNextBounceStateHardAboveThresholdStillIncrements(t *testing.T) {
	entry := &EmailBlocklistEntry{Reason: BlockReasonBounceAuto, BounceCount: 5}

	count, reason := NextBounceState(entry, true)
	assert.Equal(t, 6, count)
	assert.Equal(t, BlockReasonBounceAuto, reason)
}

// TestNextBounceStateSpamIsTerminal - Spam nunca é rebaixado por bounces
// posteriores, hard ou soft.
func TestNextBounceStateSpamIsTerminal(t *testing.T) {
	entry := &EmailBlocklistEntry{Reason: BlockReasonSpam, BounceCount: SpamBounceCount}

	count, reason := NextBounceState(entry, true)
	assert.Equal(t, SpamBounceCount, count)
	assert.Equal(t, BlockReasonSpam, reason)

	count, reason = NextBounceState(entry, false)
	assert.Equal(t, SpamBounceCount, count)
	assert.Equal(t, BlockReasonSpam, reason)
}

// TestBlocked - O corte é na contagem, não no motivo.
func TestBlocked(t *testing.T) {
	assert.False(t, (&EmailBlocklistEntry{BounceCount: 2}).Blocked())
	assert.True(t, (&EmailBlocklistEntry{BounceCount: 3}).Blocked())
	assert.True(t, (&EmailBlocklistEntry{BounceCount: SpamBounceCount}).Blocked())
}

// TestNormalizeEmail - Case-insensitive e sem espaços nas pontas.
func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "maria@acme.com", NormalizeEmail("  MARIA@Acme.com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
