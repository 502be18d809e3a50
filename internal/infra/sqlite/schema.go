package sqlite

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (sqlite executes one at a time).
// Monetary columns are 2-scale decimal TEXT; nothing here is ever hard
// deleted — corrections are compensating rows.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS periods (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'PLANNED',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_periods_status ON periods(status)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id               TEXT PRIMARY KEY,
			period_id        TEXT NOT NULL REFERENCES periods(id),
			name             TEXT NOT NULL,
			session_date     TEXT NOT NULL,
			collation_amount TEXT NOT NULL DEFAULT '0.00',
			status           TEXT NOT NULL DEFAULT 'PLANNED',
			created_at       TEXT NOT NULL,
			UNIQUE(period_id, session_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(period_id, status)`,

		`CREATE TABLE IF NOT EXISTS members (
			id                TEXT PRIMARY KEY,
			member_no         TEXT NOT NULL UNIQUE,
			full_name         TEXT NOT NULL,
			status            TEXT NOT NULL DEFAULT 'NOT_IN_GOOD_STANDING',
			registration_date TEXT NOT NULL,
			period_id         TEXT NOT NULL REFERENCES periods(id),
			session_id        TEXT NOT NULL REFERENCES sessions(id),
			created_at        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_status ON members(status, registration_date)`,

		`CREATE TABLE IF NOT EXISTS fund_accounts (
			id         TEXT PRIMARY KEY,
			period_id  TEXT NOT NULL UNIQUE REFERENCES periods(id),
			balance    TEXT NOT NULL DEFAULT '0.00',
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS fund_movements (
			id          TEXT PRIMARY KEY,
			fund_id     TEXT NOT NULL REFERENCES fund_accounts(id),
			type        TEXT NOT NULL,
			amount      TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_fund ON fund_movements(fund_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS registration_payments (
			id         TEXT PRIMARY KEY,
			member_id  TEXT NOT NULL REFERENCES members(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			amount     TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_regpay_member ON registration_payments(member_id)`,

		`CREATE TABLE IF NOT EXISTS solidarity_payments (
			id         TEXT PRIMARY KEY,
			member_id  TEXT NOT NULL REFERENCES members(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			amount     TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_solpay_member ON solidarity_payments(member_id, session_id)`,

		`CREATE TABLE IF NOT EXISTS savings_entries (
			id         TEXT PRIMARY KEY,
			member_id  TEXT NOT NULL REFERENCES members(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			entry_type TEXT NOT NULL,
			amount     TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_savings_member ON savings_entries(member_id)`,

		`CREATE TABLE IF NOT EXISTS loans (
			id         TEXT PRIMARY KEY,
			member_id  TEXT NOT NULL REFERENCES members(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			principal  TEXT NOT NULL,
			rate       TEXT NOT NULL,
			total_due  TEXT NOT NULL,
			repaid     TEXT NOT NULL DEFAULT '0.00',
			issued_at  TEXT NOT NULL,
			due_date   TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_member_status ON loans(member_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_status_due ON loans(status, due_date)`,

		`CREATE TABLE IF NOT EXISTS repayments (
			id         TEXT PRIMARY KEY,
			loan_id    TEXT NOT NULL REFERENCES loans(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			amount     TEXT NOT NULL,
			capital    TEXT NOT NULL,
			interest   TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_repayments_loan ON repayments(loan_id)`,

		`CREATE TABLE IF NOT EXISTS replenishment_debts (
			id           TEXT PRIMARY KEY,
			member_id    TEXT NOT NULL REFERENCES members(id),
			session_id   TEXT NOT NULL REFERENCES sessions(id),
			amount_due   TEXT NOT NULL,
			amount_paid  TEXT NOT NULL DEFAULT '0.00',
			cause        TEXT NOT NULL,
			cause_detail TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL,
			UNIQUE(member_id, session_id, cause, cause_detail)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_repl_debts_member ON replenishment_debts(member_id)`,

		`CREATE TABLE IF NOT EXISTS replenishment_payments (
			id         TEXT PRIMARY KEY,
			debt_id    TEXT NOT NULL REFERENCES replenishment_debts(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			amount     TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_repl_payments_debt ON replenishment_payments(debt_id)`,

		`CREATE TABLE IF NOT EXISTS assistance_types (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			amount     TEXT NOT NULL,
			active     INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS assistance_grants (
			id            TEXT PRIMARY KEY,
			member_id     TEXT NOT NULL REFERENCES members(id),
			type_id       TEXT NOT NULL REFERENCES assistance_types(id),
			session_id    TEXT NOT NULL REFERENCES sessions(id),
			amount        TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'REQUESTED',
			justification TEXT NOT NULL DEFAULT '',
			requested_at  TEXT NOT NULL,
			paid_at       TEXT,
			created_at    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_grants_member ON assistance_grants(member_id, status)`,
	}
}
