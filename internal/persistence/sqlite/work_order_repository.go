package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/cmms-backend/internal/calendar"
	"github.com/example/cmms-backend/internal/persistence"
)

// WorkOrderRepository implements persistence.WorkOrderRepository using SQLite.
// Assignees, vendors and upload references live in join tables and are
// written together with the work order row in one transaction.
type WorkOrderRepository struct {
	pool *ConnectionPool
}

// NewWorkOrderRepository creates a new SQLite work order repository.
func NewWorkOrderRepository(pool *ConnectionPool) *WorkOrderRepository {
	return &WorkOrderRepository{pool: pool}
}

const workOrderColumns = `id, tenant_id, name, description, priority, status, start_at, due_at,
	recurrence_type, recurrence_interval, recurrence_days, recurrence_date_of_month,
	recurrence_week_of_month, recurrence_weekday, recurrence_month_of_year,
	asset_id, location, created_by, parent_id, created_at, updated_at`

// CreateWorkOrder inserts a work order with its related rows.
func (r *WorkOrderRepository) CreateWorkOrder(ctx context.Context, order persistence.WorkOrder) error {
	if order.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO work_orders (`+workOrderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			order.ID,
			order.TenantID,
			order.Name,
			nullableString(order.Description),
			order.Priority,
			order.Status,
			formatTime(order.Start),
			formatNullableTime(order.Due),
			order.Recurrence.Type,
			order.Recurrence.Interval,
			encodeWeekdays(order.Recurrence.DaysOfWeek),
			order.Recurrence.DateOfMonth,
			order.Recurrence.WeekOfMonth,
			int(order.Recurrence.WeekdayOfMonth),
			order.Recurrence.MonthOfYear,
			nullableString(order.AssetID),
			nullableString(order.Location),
			order.CreatedBy,
			nullableString(order.ParentID),
			formatTime(order.CreatedAt),
			formatTime(order.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return r.replaceRelations(ctx, tx, order)
	})
}

// UpdateWorkOrder updates an existing work order and its related rows. The
// tenant, creator and parent associations are immutable.
func (r *WorkOrderRepository) UpdateWorkOrder(ctx context.Context, order persistence.WorkOrder) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE work_orders
			SET name = ?, description = ?, priority = ?, status = ?, start_at = ?, due_at = ?,
				recurrence_type = ?, recurrence_interval = ?, recurrence_days = ?,
				recurrence_date_of_month = ?, recurrence_week_of_month = ?,
				recurrence_weekday = ?, recurrence_month_of_year = ?,
				asset_id = ?, location = ?, updated_at = ?
			WHERE id = ?
		`,
			order.Name,
			nullableString(order.Description),
			order.Priority,
			order.Status,
			formatTime(order.Start),
			formatNullableTime(order.Due),
			order.Recurrence.Type,
			order.Recurrence.Interval,
			encodeWeekdays(order.Recurrence.DaysOfWeek),
			order.Recurrence.DateOfMonth,
			order.Recurrence.WeekOfMonth,
			int(order.Recurrence.WeekdayOfMonth),
			order.Recurrence.MonthOfYear,
			nullableString(order.AssetID),
			nullableString(order.Location),
			formatTime(order.UpdatedAt),
			order.ID,
		)
		if err != nil {
			return mapError(err)
		}
		if err := requireRowAffected(result); err != nil {
			return err
		}
		return r.replaceRelations(ctx, tx, order)
	})
}

// UpdateWorkOrderDates rewrites only the date window of a work order. This is
// the narrow write used by the recurrence engine when it rederives a due
// date in place.
func (r *WorkOrderRepository) UpdateWorkOrderDates(ctx context.Context, id string, start time.Time, due *time.Time, updatedAt time.Time) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE work_orders SET start_at = ?, due_at = ?, updated_at = ? WHERE id = ?
	`,
		formatTime(start),
		formatNullableTime(due),
		formatTime(updatedAt),
		id,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// GetWorkOrder retrieves a work order by ID, including related rows.
func (r *WorkOrderRepository) GetWorkOrder(ctx context.Context, id string) (persistence.WorkOrder, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = ?`, id)
	order, err := scanWorkOrder(row)
	if err != nil {
		return persistence.WorkOrder{}, err
	}
	if err := r.loadRelations(ctx, &order); err != nil {
		return persistence.WorkOrder{}, err
	}
	return order, nil
}

// ListWorkOrders returns work orders matching the filter ordered by start
// time, then ID.
func (r *WorkOrderRepository) ListWorkOrders(ctx context.Context, filter persistence.WorkOrderFilter) ([]persistence.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders`
	var (
		clauses []string
		args    []any
	)

	if filter.TenantID != "" {
		clauses = append(clauses, `tenant_id = ?`)
		args = append(args, filter.TenantID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Statuses))
		clauses = append(clauses, `status IN (`+placeholders[:len(placeholders)-2]+`)`)
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if len(filter.AssigneeIDs) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.AssigneeIDs))
		clauses = append(clauses, `id IN (SELECT work_order_id FROM work_order_assignees WHERE user_id IN (`+placeholders[:len(placeholders)-2]+`))`)
		for _, id := range filter.AssigneeIDs {
			args = append(args, id)
		}
	}
	if filter.AssetID != nil {
		clauses = append(clauses, `asset_id = ?`)
		args = append(args, *filter.AssetID)
	}
	if filter.ParentID != nil {
		clauses = append(clauses, `parent_id = ?`)
		args = append(args, *filter.ParentID)
	}
	if filter.StartsAfter != nil {
		clauses = append(clauses, `start_at >= ?`)
		args = append(args, formatTime(*filter.StartsAfter))
	}
	if filter.DueBefore != nil {
		clauses = append(clauses, `due_at IS NOT NULL AND due_at < ?`)
		args = append(args, formatTime(*filter.DueBefore))
	}

	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY start_at, id`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var orders []persistence.WorkOrder
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range orders {
		if err := r.loadRelations(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// DeleteWorkOrder removes a work order by ID. Successors keep their parent
// reference; the foreign key blocks deleting a predecessor that still has
// children.
func (r *WorkOrderRepository) DeleteWorkOrder(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM work_orders WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

func (r *WorkOrderRepository) replaceRelations(ctx context.Context, tx *sql.Tx, order persistence.WorkOrder) error {
	for _, table := range []string{"work_order_assignees", "work_order_vendors", "work_order_uploads"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE work_order_id = ?`, order.ID); err != nil {
			return mapError(err)
		}
	}

	for _, userID := range order.AssigneeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_order_assignees (work_order_id, user_id) VALUES (?, ?)`,
			order.ID, userID,
		); err != nil {
			return mapError(err)
		}
	}
	for i, vendor := range order.Vendors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_order_vendors (work_order_id, position, vendor) VALUES (?, ?, ?)`,
			order.ID, i, vendor,
		); err != nil {
			return mapError(err)
		}
	}
	for i, ref := range order.Uploads {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_order_uploads (work_order_id, position, upload_ref) VALUES (?, ?, ?)`,
			order.ID, i, ref,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *WorkOrderRepository) loadRelations(ctx context.Context, order *persistence.WorkOrder) error {
	assignees, err := r.collectStrings(ctx,
		`SELECT user_id FROM work_order_assignees WHERE work_order_id = ? ORDER BY user_id`, order.ID)
	if err != nil {
		return err
	}
	order.AssigneeIDs = assignees

	vendors, err := r.collectStrings(ctx,
		`SELECT vendor FROM work_order_vendors WHERE work_order_id = ? ORDER BY position`, order.ID)
	if err != nil {
		return err
	}
	order.Vendors = vendors

	uploads, err := r.collectStrings(ctx,
		`SELECT upload_ref FROM work_order_uploads WHERE work_order_id = ? ORDER BY position`, order.ID)
	if err != nil {
		return err
	}
	order.Uploads = uploads
	return nil
}

func (r *WorkOrderRepository) collectStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, mapError(err)
		}
		values = append(values, value)
	}
	return values, mapError(rows.Err())
}

func scanWorkOrder(row rowScanner) (persistence.WorkOrder, error) {
	var (
		order       persistence.WorkOrder
		description sql.NullString
		startAt     string
		dueAt       sql.NullString
		days        string
		weekday     int
		assetID     sql.NullString
		location    sql.NullString
		parentID    sql.NullString
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(
		&order.ID,
		&order.TenantID,
		&order.Name,
		&description,
		&order.Priority,
		&order.Status,
		&startAt,
		&dueAt,
		&order.Recurrence.Type,
		&order.Recurrence.Interval,
		&days,
		&order.Recurrence.DateOfMonth,
		&order.Recurrence.WeekOfMonth,
		&weekday,
		&order.Recurrence.MonthOfYear,
		&assetID,
		&location,
		&order.CreatedBy,
		&parentID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.WorkOrder{}, mapError(err)
	}

	order.Description = stringPointer(description)
	order.AssetID = stringPointer(assetID)
	order.Location = stringPointer(location)
	order.ParentID = stringPointer(parentID)
	order.Recurrence.DaysOfWeek = decodeWeekdays(days)
	order.Recurrence.WeekdayOfMonth = time.Weekday(weekday)

	var err error
	if order.Start, err = parseTime(startAt); err != nil {
		return persistence.WorkOrder{}, err
	}
	if order.Due, err = parseNullableTime(dueAt); err != nil {
		return persistence.WorkOrder{}, err
	}
	if order.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.WorkOrder{}, err
	}
	if order.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.WorkOrder{}, err
	}
	return order, nil
}

// encodeWeekdays stores a weekday selection as a comma separated list of
// "mon".."sun" abbreviations.
func encodeWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	abbrs := make([]string, 0, len(days))
	for _, day := range days {
		if abbr := calendar.Abbreviation(day); abbr != "" {
			abbrs = append(abbrs, abbr)
		}
	}
	return strings.Join(abbrs, ",")
}

func decodeWeekdays(encoded string) []time.Weekday {
	if encoded == "" {
		return nil
	}
	parts := strings.Split(encoded, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		day, err := calendar.ParseWeekdayAbbreviation(part)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	return days
}
