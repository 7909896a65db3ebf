package sqlite

import "github.com/example/cmms-backend/internal/persistence/sqlite/migration"

// schemaMigrations returns the ordered schema history for the CMMS database.
func schemaMigrations() []migration.Migration {
	return []migration.Migration{
		{
			Version:     1,
			Description: "initial schema",
			SQL: `
				CREATE TABLE tenants (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					working_days TEXT NOT NULL DEFAULT '',
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				);

				CREATE TABLE users (
					id TEXT PRIMARY KEY,
					tenant_id TEXT NOT NULL REFERENCES tenants(id),
					email TEXT NOT NULL UNIQUE,
					display_name TEXT NOT NULL,
					password_hash TEXT NOT NULL,
					is_admin INTEGER NOT NULL DEFAULT 0,
					disabled INTEGER NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				);

				CREATE TABLE assets (
					id TEXT PRIMARY KEY,
					tenant_id TEXT NOT NULL REFERENCES tenants(id),
					name TEXT NOT NULL,
					location TEXT NOT NULL DEFAULT '',
					serial_number TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				);

				CREATE TABLE sessions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					token TEXT NOT NULL UNIQUE,
					fingerprint TEXT NOT NULL DEFAULT '',
					expires_at TEXT NOT NULL,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					revoked_at TEXT
				);
			`,
		},
		{
			Version:     2,
			Description: "work orders and recurrence",
			SQL: `
				CREATE TABLE work_orders (
					id TEXT PRIMARY KEY,
					tenant_id TEXT NOT NULL REFERENCES tenants(id),
					name TEXT NOT NULL,
					description TEXT,
					priority TEXT NOT NULL DEFAULT 'none'
						CHECK (priority IN ('none', 'low', 'medium', 'high')),
					status TEXT NOT NULL DEFAULT 'open'
						CHECK (status IN ('open', 'onHold', 'inProgress', 'done')),
					start_at TEXT NOT NULL,
					due_at TEXT,
					recurrence_type TEXT NOT NULL DEFAULT 'none',
					recurrence_interval INTEGER NOT NULL DEFAULT 0,
					recurrence_days TEXT NOT NULL DEFAULT '',
					recurrence_date_of_month INTEGER NOT NULL DEFAULT 0,
					recurrence_week_of_month TEXT NOT NULL DEFAULT '',
					recurrence_weekday INTEGER NOT NULL DEFAULT -1,
					recurrence_month_of_year INTEGER NOT NULL DEFAULT 0,
					asset_id TEXT REFERENCES assets(id) ON DELETE SET NULL,
					location TEXT,
					created_by TEXT NOT NULL REFERENCES users(id),
					parent_id TEXT REFERENCES work_orders(id),
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				);

				CREATE INDEX idx_work_orders_tenant ON work_orders(tenant_id);
				CREATE INDEX idx_work_orders_parent ON work_orders(parent_id);
				CREATE INDEX idx_work_orders_status ON work_orders(status);

				CREATE TABLE work_order_assignees (
					work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					PRIMARY KEY (work_order_id, user_id)
				);

				CREATE TABLE work_order_vendors (
					work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					vendor TEXT NOT NULL,
					PRIMARY KEY (work_order_id, position)
				);

				CREATE TABLE work_order_uploads (
					work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					upload_ref TEXT NOT NULL,
					PRIMARY KEY (work_order_id, position)
				);
			`,
		},
	}
}
