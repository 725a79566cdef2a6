package journal

// Prices and quantities are stored as TEXT so decimals round-trip without
// float conversion.
const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	opened_at DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry TEXT NOT NULL,
	qty TEXT NOT NULL,
	stop_loss TEXT NOT NULL,
	take_profit TEXT NOT NULL,
	exit_price TEXT,
	pnl TEXT,
	fee TEXT NOT NULL,
	status TEXT NOT NULL,
	metadata TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
CREATE INDEX IF NOT EXISTS idx_trades_opened_at ON trades(opened_at);
`
