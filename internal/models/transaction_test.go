package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalance(t *testing.T) {
	transactions := []Transaction{
		{Type: TransactionReceived, Amount: 1000},
		{Type: TransactionPayment, Amount: 300},
		{Type: TransactionRefund, Amount: 50},
	}

	assert.Equal(t, 650.0, Balance(transactions))
}

func TestBalanceIsOrderIndependent(t *testing.T) {
	forward := []Transaction{
		{Type: TransactionReceived, Amount: 1200},
		{Type: TransactionPayment, Amount: 450},
		{Type: TransactionReceived, Amount: 300},
		{Type: TransactionRefund, Amount: 75},
	}
	reversed := []Transaction{forward[3], forward[2], forward[1], forward[0]}

	assert.Equal(t, Balance(forward), Balance(reversed))
}

func TestBalanceEmptyLedger(t *testing.T) {
	assert.Zero(t, Balance(nil))
}
