package repositories

import (
	"database/sql"

	"github.com/organize/auth-gateway/models"
)

// LoginEventRepository handles login event persistence
type LoginEventRepository interface {
	Create(event *models.LoginEvent) error
	Counts() ([]models.LoginEventCount, error)
}

type sqliteLoginEventRepository struct {
	db *sql.DB
}

// NewLoginEventRepository creates a new login event repository
func NewLoginEventRepository(db *sql.DB) LoginEventRepository {
	return &sqliteLoginEventRepository{db: db}
}

// Create inserts a new login event
func (r *sqliteLoginEventRepository) Create(event *models.LoginEvent) error {
	query := `
		INSERT INTO login_events (id, timestamp, provider, outcome, reason, email, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(
		query,
		event.ID,
		event.Timestamp,
		event.Provider,
		event.Outcome,
		event.Reason,
		event.Email,
		event.IPAddress,
		event.UserAgent,
	)

	return err
}

// Counts returns login event totals grouped by provider and outcome
func (r *sqliteLoginEventRepository) Counts() ([]models.LoginEventCount, error) {
	query := `
		SELECT provider, outcome, COUNT(*)
		FROM login_events
		GROUP BY provider, outcome
		ORDER BY provider, outcome
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.LoginEventCount
	for rows.Next() {
		var c models.LoginEventCount
		if err := rows.Scan(&c.Provider, &c.Outcome, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
