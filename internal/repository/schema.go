package repository

import "StockCast/pkg/database"

// StockTable holds one row per trading day.
const StockTable = "stock_data"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS stock_data (
		id          SERIAL PRIMARY KEY,
		date        DATE NOT NULL UNIQUE,
		open_price  NUMERIC(14, 4) NOT NULL,
		high_price  NUMERIC(14, 4) NOT NULL,
		low_price   NUMERIC(14, 4) NOT NULL,
		close_price NUMERIC(14, 4) NOT NULL,
		volume      BIGINT NOT NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS stock_data (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		date        TEXT NOT NULL UNIQUE,
		open_price  REAL NOT NULL,
		high_price  REAL NOT NULL,
		low_price   REAL NOT NULL,
		close_price REAL NOT NULL,
		volume      INTEGER NOT NULL
	)`,
}

// ReplacingMergeTree collapses duplicate dates on merge; inserts are still
// filtered up front so the first stored row wins.
var clickhouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS stock_data (
		date        Date,
		open_price  Float64,
		high_price  Float64,
		low_price   Float64,
		close_price Float64,
		volume      Int64,
		inserted_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree
	ORDER BY date`,
}

func schemaFor(driver string) []string {
	if driver == database.DriverPostgres {
		return postgresSchema
	}
	return sqliteSchema
}
