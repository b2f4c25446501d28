package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = time.Hour
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

var migrations = []string{
	`create extension if not exists pgcrypto`,
	`create table if not exists users (
		id uuid primary key default gen_random_uuid(),
		name text not null,
		email text not null unique,
		phone text not null default '',
		is_admin boolean not null default false,
		balance numeric(20,4) not null default 0 check (balance >= 0),
		created_at timestamptz not null default now()
	)`,
	`create table if not exists user_credentials (
		user_id uuid primary key references users(id) on delete cascade,
		password_hash text not null
	)`,
	`create table if not exists holdings (
		user_id uuid not null references users(id) on delete cascade,
		symbol text not null,
		quantity bigint not null check (quantity > 0),
		avg_price numeric(20,4) not null check (avg_price > 0),
		primary key (user_id, symbol)
	)`,
	`create table if not exists transactions (
		id uuid primary key default gen_random_uuid(),
		user_id uuid not null references users(id) on delete cascade,
		side text not null check (side in ('BUY','SELL')),
		symbol text not null,
		quantity bigint not null check (quantity > 0),
		price numeric(20,4) not null check (price > 0),
		risk text not null,
		created_at timestamptz not null default now()
	)`,
	`create index if not exists transactions_user_created_idx
		on transactions (user_id, created_at desc)`,
	`create table if not exists instruments (
		symbol text primary key,
		name text not null,
		sector text not null,
		price numeric(20,4) not null check (price > 0),
		base_price numeric(20,4) not null check (base_price > 0)
	)`,
}

// Migrate applies the idempotent schema. Statements run one at a time so
// a partially applied schema converges on the next start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
