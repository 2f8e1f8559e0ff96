package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("dpst")
	assert.Contains(t, id, "dpst_")
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("dpst"))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusPending))
	assert.True(t, IsTerminal(StatusSuccessed))
	assert.True(t, IsTerminal(StatusFailed))
	assert.False(t, IsTerminal("UNKNOWN"))
}

func TestCallbackCreditAmount(t *testing.T) {
	event := &CallbackEvent{Amount: 10, NetAmount: 9.87}
	assert.Equal(t, 9.87, event.CreditAmount())

	event = &CallbackEvent{Amount: 10}
	assert.Equal(t, 10.0, event.CreditAmount())
}

func TestCallbackSucceeded(t *testing.T) {
	assert.True(t, (&CallbackEvent{Status: CallbackStatusSuccessed}).Succeeded())
	assert.False(t, (&CallbackEvent{Status: CallbackStatusFailed}).Succeeded())
	assert.False(t, (&CallbackEvent{Status: "pending"}).Succeeded())
}
