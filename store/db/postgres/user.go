package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pbhm215/everyday-pda/store"
)

// preferenceQueries maps each store-backed field name to its lookup. The
// keys mirror the assistant's field vocabulary.
var preferenceQueries = map[string]string{
	"Stock-Name": `SELECT stock_name FROM stocks s
		JOIN user_stocks us ON s.s_id = us.s_id
		JOIN users u ON us.u_id = u.u_id
		WHERE u.username = $1`,
	"News-Topic": `SELECT news_name FROM news n
		JOIN user_news un ON n.n_id = un.n_id
		JOIN users u ON un.u_id = u.u_id
		WHERE u.username = $1`,
	"City":             `SELECT city FROM users WHERE username = $1 AND city <> ''`,
	"Canteen-Name":     `SELECT cafeteria FROM users WHERE username = $1 AND cafeteria <> ''`,
	"Transport-Medium": `SELECT preferred_transport_medium FROM users WHERE username = $1 AND preferred_transport_medium <> ''`,
}

func (d *DB) LookupPreference(ctx context.Context, field, username string) ([]string, error) {
	query, ok := preferenceQueries[field]
	if !ok {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", field, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", field, err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

func (d *DB) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT username FROM users ORDER BY u_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, create.Username).Scan(&existing); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing > 0 {
		return nil, store.ErrUserAlreadyExists
	}

	stmt := `INSERT INTO users (username, course, cafeteria, city, preferred_transport_medium)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING u_id`
	if err := tx.QueryRowContext(ctx, stmt,
		create.Username, create.Course, create.Cafeteria, create.City, create.PreferredTransportMedium,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := linkItems(ctx, tx, create.ID, create.Stocks, "stocks", "s_id", "stock_name", "user_stocks"); err != nil {
		return nil, err
	}
	if err := linkItems(ctx, tx, create.ID, create.News, "news", "n_id", "news_name", "user_news"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) GetUser(ctx context.Context, username string) (*store.User, error) {
	user := &store.User{}
	stmt := `SELECT u_id, username, course, cafeteria, city, preferred_transport_medium
		FROM users WHERE username = $1`
	err := d.db.QueryRowContext(ctx, stmt, username).Scan(
		&user.ID, &user.Username, &user.Course, &user.Cafeteria, &user.City, &user.PreferredTransportMedium,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Stocks, err = d.LookupPreference(ctx, "Stock-Name", username); err != nil {
		return nil, err
	}
	if user.News, err = d.LookupPreference(ctx, "News-Topic", username); err != nil {
		return nil, err
	}
	return user, nil
}

func (d *DB) UpdateUser(ctx context.Context, username string, update *store.UpdateUser) (*store.User, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var userID int32
	err = tx.QueryRowContext(ctx, `SELECT u_id FROM users WHERE username = $1`, username).Scan(&userID)
	if err == sql.ErrNoRows {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	set, args := []string{}, []any{}
	if update.Course != nil {
		set, args = append(set, fmt.Sprintf("course = $%d", len(args)+1)), append(args, *update.Course)
	}
	if update.Cafeteria != nil {
		set, args = append(set, fmt.Sprintf("cafeteria = $%d", len(args)+1)), append(args, *update.Cafeteria)
	}
	if update.City != nil {
		set, args = append(set, fmt.Sprintf("city = $%d", len(args)+1)), append(args, *update.City)
	}
	if update.PreferredTransportMedium != nil {
		set, args = append(set, fmt.Sprintf("preferred_transport_medium = $%d", len(args)+1)), append(args, *update.PreferredTransportMedium)
	}
	if len(set) > 0 {
		stmt := fmt.Sprintf("UPDATE users SET %s WHERE u_id = $%d", strings.Join(set, ", "), len(args)+1)
		if _, err := tx.ExecContext(ctx, stmt, append(args, userID)...); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	if err := linkItems(ctx, tx, userID, update.AddStocks, "stocks", "s_id", "stock_name", "user_stocks"); err != nil {
		return nil, err
	}
	if err := unlinkItems(ctx, tx, userID, update.DeleteStocks, "stocks", "s_id", "stock_name", "user_stocks"); err != nil {
		return nil, err
	}
	if err := linkItems(ctx, tx, userID, update.AddNews, "news", "n_id", "news_name", "user_news"); err != nil {
		return nil, err
	}
	if err := unlinkItems(ctx, tx, userID, update.DeleteNews, "news", "n_id", "news_name", "user_news"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return d.GetUser(ctx, username)
}

// linkItems upserts each named item into its lookup table and links it to
// the user.
func linkItems(ctx context.Context, tx *sql.Tx, userID int32, items []string, table, idColumn, nameColumn, linkTable string) error {
	for _, item := range items {
		var itemID int32
		upsert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1)
			ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s
			RETURNING %s`, table, nameColumn, nameColumn, nameColumn, nameColumn, idColumn)
		if err := tx.QueryRowContext(ctx, upsert, item).Scan(&itemID); err != nil {
			return fmt.Errorf("failed to upsert %s %q: %w", table, item, err)
		}

		link := fmt.Sprintf(`INSERT INTO %s (u_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, linkTable, idColumn)
		if _, err := tx.ExecContext(ctx, link, userID, itemID); err != nil {
			return fmt.Errorf("failed to link %s %q: %w", table, item, err)
		}
	}
	return nil
}

func unlinkItems(ctx context.Context, tx *sql.Tx, userID int32, items []string, table, idColumn, nameColumn, linkTable string) error {
	for _, item := range items {
		stmt := fmt.Sprintf(`DELETE FROM %s WHERE u_id = $1 AND %s = (SELECT %s FROM %s WHERE %s = $2)`,
			linkTable, idColumn, idColumn, table, nameColumn)
		if _, err := tx.ExecContext(ctx, stmt, userID, item); err != nil {
			return fmt.Errorf("failed to unlink %s %q: %w", table, item, err)
		}
	}
	return nil
}
