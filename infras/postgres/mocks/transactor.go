package mocks

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Transactor runs the callback without a real transaction. Repositories mocked
// alongside it receive a nil *sqlx.Tx.
type Transactor struct{}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}
