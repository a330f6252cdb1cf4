package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_status') THEN
			CREATE TYPE vehicle_status AS ENUM ('AVAILABLE', 'RENTED', 'IN_MAINTENANCE', 'BROKEN', 'WRECKED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'location_status') THEN
			CREATE TYPE location_status AS ENUM ('active', 'completed');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('user', 'admin');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		role user_role NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_users_email UNIQUE (email)
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		make VARCHAR(64) NOT NULL,
		model VARCHAR(64) NOT NULL,
		license_plate VARCHAR(32) NOT NULL,
		year INTEGER NOT NULL,
		odometer BIGINT NOT NULL DEFAULT 0 CHECK (odometer >= 0),
		last_oil_change_km BIGINT NOT NULL DEFAULT 0,
		status vehicle_status NOT NULL DEFAULT 'AVAILABLE',
		fuel_type VARCHAR(16) NOT NULL,
		insurance_expires_at TIMESTAMPTZ NOT NULL,
		daily_price NUMERIC(12,2) NOT NULL CHECK (daily_price > 0),
		fault_reason TEXT,
		repair_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_vehicles_license_plate UNIQUE (license_plate)
	);`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		cin CHAR(8) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		city VARCHAR(128) NOT NULL DEFAULT '',
		rental_count INTEGER NOT NULL DEFAULT 0,
		fidelity_tier VARCHAR(16) NOT NULL DEFAULT 'NONE',
		blacklisted BOOLEAN NOT NULL DEFAULT FALSE,
		blacklist_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_clients_cin UNIQUE (cin)
	);`,
	`CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id),
		client_id UUID NOT NULL REFERENCES clients(id),
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		effective_start_date TIMESTAMPTZ NOT NULL,
		effective_end_date TIMESTAMPTZ,
		duration_days INTEGER NOT NULL,
		daily_price NUMERIC(12,2) NOT NULL,
		discount_rate NUMERIC(4,2) NOT NULL DEFAULT 0,
		price_ttc NUMERIC(14,2) NOT NULL,
		guarantee NUMERIC(12,2) NOT NULL DEFAULT 0,
		status location_status NOT NULL DEFAULT 'active',
		initial_odometer BIGINT NOT NULL,
		final_odometer BIGINT,
		distance_traveled BIGINT,
		maintenance_alert_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date > start_date),
		CHECK (final_odometer IS NULL OR final_odometer >= initial_odometer)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_locations_vehicle_id ON locations (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_locations_client_id ON locations (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_locations_active_end ON locations (end_date) WHERE status = 'active';`,
	`CREATE TABLE IF NOT EXISTS maintenance_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		type VARCHAR(16) NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		odometer BIGINT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_records_vehicle_id ON maintenance_records (vehicle_id);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.table_constraints WHERE constraint_name = 'fk_locations_maintenance_alert') THEN
			ALTER TABLE locations ADD CONSTRAINT fk_locations_maintenance_alert
				FOREIGN KEY (maintenance_alert_id) REFERENCES maintenance_records(id) ON DELETE SET NULL;
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(255) NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		category VARCHAR(16) NOT NULL,
		location_id UUID REFERENCES locations(id) ON DELETE CASCADE,
		maintenance_id UUID REFERENCES maintenance_records(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_events_range ON calendar_events (start_at, end_at);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		message TEXT NOT NULL,
		category VARCHAR(32) NOT NULL,
		alert BOOLEAN NOT NULL DEFAULT FALSE,
		seen BOOLEAN NOT NULL DEFAULT FALSE,
		location_id UUID REFERENCES locations(id) ON DELETE SET NULL,
		vehicle_id UUID REFERENCES vehicles(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_unseen ON notifications (created_at DESC) WHERE seen = FALSE;`,
	`CREATE TABLE IF NOT EXISTS contract_documents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		location_id UUID NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		file_name VARCHAR(255) NOT NULL,
		url TEXT NOT NULL,
		storage_key VARCHAR(255) NOT NULL,
		uploaded_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_documents_location_id ON contract_documents (location_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
