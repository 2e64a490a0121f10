// Package postgres implements the storefront's stores on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// PostgreSQL error codes used for mapping.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// Connect opens a pgx connection pool and verifies connectivity with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 25
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// pgCode returns the SQLSTATE of a PostgreSQL error, or "".
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error, op, resource string) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return domain.Conflict(op, resource+" already exists")
	case pgForeignKeyViolation:
		return domain.Errorf(domain.EINVALID, op, "%s references a missing record", resource)
	case pgCheckViolation, pgInvalidText:
		return domain.Errorf(domain.EINVALID, op, "invalid %s", resource)
	}
	return domain.Internal(err, op, "failed to write "+resource)
}

// requireRow maps a zero-row command or malformed id to ENOTFOUND.
func requireRow(tag pgconn.CommandTag, err error, op, resource, id string) error {
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return domain.NotFound(op, resource, id)
		}
		return domain.Internal(err, op, "failed to write "+resource)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, resource, id)
	}
	return nil
}

// isNoRows reports whether err means the row does not exist.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidText
}

// clampLimit bounds list sizes for admin views.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 500:
		return 500
	}
	return limit
}
